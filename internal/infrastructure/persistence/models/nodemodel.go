package models

import "gorm.io/datatypes"

type NodeModel struct {
	ID         uint   `gorm:"primarykey"`
	Name       string `gorm:"size:100;not null"`
	IP         string `gorm:"size:64;not null;index:idx_node_ip"`
	Domain     string `gorm:"size:255"`
	RealityPub string `gorm:"size:64"`
	ShortID    string `gorm:"size:32"`
	RealitySNI string `gorm:"size:255"`
	IsActive   bool   `gorm:"not null;default:true;index:idx_node_active"`
}

func (NodeModel) TableName() string {
	return "nodes"
}

type InboundModel struct {
	ID             uint   `gorm:"primarykey"`
	NodeID         uint   `gorm:"not null;index:idx_inbound_node"`
	Tag            string `gorm:"size:100;not null"`
	Protocol       string `gorm:"size:32;not null"`
	Listen         string `gorm:"size:64"`
	Port           int    `gorm:"not null"`
	StreamSettings datatypes.JSON
	IsEnabled      bool `gorm:"not null;default:true"`
}

func (InboundModel) TableName() string {
	return "inbounds"
}
