package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile 表示站点唯一的个人资料文档。
// 约定整个部署中至多存在一条记录，首次读取时按默认内容惰性创建。
type Profile struct {
	gorm.Model
	Name        string `gorm:"size:255"`
	Title       string `gorm:"size:255"`
	Description string `gorm:"type:text"`

	// 头像引用：URL 与对象键要么同时为空，要么同时填充。
	PhotoURL       string `gorm:"size:512"`
	PhotoObjectKey string `gorm:"size:512"`

	// CV 引用：展示名独立于存储文件名，可被单独重命名。
	CVFileName     string `gorm:"size:255"`
	CVOriginalName string `gorm:"size:255"`
	CVURL          string `gorm:"size:512"`
	CVObjectKey    string `gorm:"size:512"`
	CVUploadedAt   *time.Time

	Skills      datatypes.JSON `gorm:"type:jsonb"`
	Experiences datatypes.JSON `gorm:"type:jsonb"`
	Formations  datatypes.JSON `gorm:"type:jsonb"`
	Contacts    datatypes.JSON `gorm:"type:jsonb"`
}

// Project 表示一条作品集条目。
// 列表顺序：sort_order 升序，创建时间降序兜底。
type Project struct {
	gorm.Model
	Title          string         `gorm:"size:255"`
	Description    string         `gorm:"type:text"`
	Technologies   datatypes.JSON `gorm:"type:jsonb"`
	ImageURL       string         `gorm:"size:512"`
	ImageObjectKey string         `gorm:"size:512"`
	GithubURL      string         `gorm:"size:512"`
	LiveURL        string         `gorm:"size:512"`
	Category       string         `gorm:"size:64;default:web"`
	SortOrder      int            `gorm:"column:sort_order;index"`
}

// Visitor 表示一次页面访问的埋点记录。
// DepartureTime 与 TimeSpent 在收到 leave 信标前保持零值；记录永不删除。
type Visitor struct {
	ID            uint      `gorm:"primarykey"`
	SessionID     string    `gorm:"size:128;index"`
	Page          string    `gorm:"size:255"`
	IP            string    `gorm:"size:64"`
	UserAgent     string    `gorm:"size:512"`
	Country       string    `gorm:"size:64"`
	ArrivalTime   time.Time `gorm:"index"`
	DepartureTime *time.Time
	TimeSpent     int
}
