package models

type Setting struct {
	ID             int     `gorm:"primaryKey" json:"id"`
	Name           string  `gorm:"size:100" json:"name"`
	MinWithdraw    float64 `gorm:"type:decimal(20,8);default:0" json:"min_withdraw"`
	Maintenance    bool    `gorm:"default:false" json:"maintenance"`
	ClosedRegister bool    `gorm:"default:false" json:"closed_register"`
}

func (Setting) TableName() string {
	return "settings"
}
