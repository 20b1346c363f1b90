package ble

import "strings"

// Advertisement 扫描得到的外设摘要
type Advertisement struct {
	Address   string
	LocalName string
	HasName   bool // 广播中是否携带本地名称
	RSSI      int16
}

// Matcher 判定外设是否为需要采集的电表
type Matcher struct {
	NameFilter string
	Targets    []string // 地址白名单，空表示不限制
}

// Match 广播名缺失视为不匹配，不作为错误处理
func (m Matcher) Match(adv Advertisement) bool {
	if !adv.HasName {
		return false
	}
	if m.NameFilter != "" && !strings.Contains(adv.LocalName, m.NameFilter) {
		return false
	}
	if len(m.Targets) == 0 {
		return true
	}
	for _, t := range m.Targets {
		if strings.EqualFold(strings.TrimSpace(t), adv.Address) {
			return true
		}
	}
	return false
}
