package model

import (
	"time"

	"gorm.io/datatypes"
)

// Schedule 录音棚预约（来自表格导入或手动创建；只做状态流转，不物理删除）
type Schedule struct {
	ID           uint64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	Title        string     `gorm:"column:title;type:varchar(255);not null;comment:预约标题" json:"title"`
	Description  string     `gorm:"column:description;type:text;comment:预约描述" json:"description"`
	Date         string     `gorm:"column:date;type:varchar(10);not null;index;index:idx_date_start,priority:1;comment:预约日期 YYYY-MM-DD" json:"date"`
	StartTime    string     `gorm:"column:start_time;type:varchar(8);not null;index:idx_date_start,priority:2;comment:开始时间 HH:MM:SS" json:"startTime"`
	EndTime      string     `gorm:"column:end_time;type:varchar(8);not null;comment:结束时间 HH:MM:SS" json:"endTime"`
	Status       string     `gorm:"column:status;type:varchar(16);default:pending;index;comment:状态：pending/ongoing/completed" json:"status"`
	Location     string     `gorm:"column:location;type:varchar(255);comment:使用场地" json:"location"`
	Organizer    string     `gorm:"column:organizer;type:varchar(100);comment:预约人" json:"organizer"`
	Unit         string     `gorm:"column:unit;type:varchar(100);comment:所属单位/院系" json:"unit"`
	SheetEntryID *uint64    `gorm:"column:sheet_entry_id;type:bigint;index;comment:关联表格行ID（手动创建时为空）" json:"sheetEntryId"`
	LastSyncedAt *time.Time `gorm:"column:last_synced_at;type:timestamp;comment:最近一次导入同步时间" json:"lastSyncedAt"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:timestamp;comment:创建时间" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;type:timestamp;comment:更新时间" json:"updatedAt"`
}

// Schedule.Status 合法取值
const (
	ScheduleStatusPending   = "pending"
	ScheduleStatusOngoing   = "ongoing"
	ScheduleStatusCompleted = "completed"
)

// BroadcastStatus 直播状态事件（仅追加日志，创建后不可修改；最新一条即当前状态）
type BroadcastStatus struct {
	ID            uint64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	StatusUUID    string     `gorm:"column:status_uuid;type:varchar(64);uniqueIndex;not null;comment:全局唯一ID" json:"statusUuid"`
	IsOnAir       bool       `gorm:"column:is_on_air;type:boolean;not null;comment:是否正在直播" json:"isOnAir"`
	StatusMessage string     `gorm:"column:status_message;type:varchar(255);comment:状态描述" json:"statusMessage"`
	UpdatedBy     string     `gorm:"column:updated_by;type:varchar(100);not null;comment:来源标识（admin/auto-scheduler/unity-manual等）" json:"updatedBy"`
	SourceKind    SourceKind `gorm:"column:source_kind;type:varchar(8);not null;index;comment:来源分级：manual/system/auto" json:"sourceKind"`
	ScheduleID    *uint64    `gorm:"column:schedule_id;type:bigint;index;comment:触发本次状态变更的预约ID" json:"scheduleId"`
	LastUpdated   time.Time  `gorm:"column:last_updated;type:timestamp;not null;index;comment:服务端生成的事件时间（排序键）" json:"lastUpdated"`
	CreatedAt     time.Time  `gorm:"column:created_at;type:timestamp;comment:创建时间" json:"-"`
}

// SheetEntry 表格导入原始行（按行标识去重，内容变化时原地更新并将版本号+1）
type SheetEntry struct {
	ID           uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	RowKey       string         `gorm:"column:row_key;type:varchar(64);uniqueIndex;not null;comment:稳定行标识（提交时间+工号/学号）" json:"-"`
	Version      int            `gorm:"column:version;type:int;default:1;comment:行内容版本号" json:"version"`
	SubmittedAt  *time.Time     `gorm:"column:submitted_at;type:timestamp;comment:表单提交时间" json:"submittedAt"`
	BorrowerName string         `gorm:"column:borrower_name;type:varchar(100);not null;comment:借用人姓名" json:"borrowerName"`
	BorrowerID   string         `gorm:"column:borrower_id;type:varchar(50);not null;comment:工号/学号" json:"borrowerId"`
	Phone        string         `gorm:"column:phone;type:varchar(20);comment:联系电话" json:"phone"`
	Unit         string         `gorm:"column:unit;type:varchar(100);index;comment:所属单位/院系" json:"unit"`
	Purpose      string         `gorm:"column:purpose;type:varchar(255);comment:借用用途" json:"purpose"`
	Facility     string         `gorm:"column:facility;type:varchar(100);comment:借用设施" json:"facility"`
	StartDate    string         `gorm:"column:start_date;type:varchar(10);not null;index;comment:借用开始日期 YYYY-MM-DD" json:"startDate"`
	EndDate      string         `gorm:"column:end_date;type:varchar(10);not null;comment:借用结束日期 YYYY-MM-DD" json:"endDate"`
	StartTime    string         `gorm:"column:start_time;type:varchar(8);not null;comment:开始时间 HH:MM:SS" json:"startTime"`
	EndTime      string         `gorm:"column:end_time;type:varchar(8);not null;comment:结束时间 HH:MM:SS" json:"endTime"`
	Hours        float64        `gorm:"column:hours;type:numeric(6,2);default:0;comment:借用时长（小时）" json:"hours"`
	Fingerprint  string         `gorm:"column:fingerprint;type:varchar(64);index;not null;comment:行内容指纹（变更检测）" json:"-"`
	Raw          datatypes.JSON `gorm:"column:raw;type:jsonb;comment:原始行数据" json:"-"`
	CreatedAt    time.Time      `gorm:"column:created_at;type:timestamp;comment:创建时间" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;type:timestamp;comment:更新时间" json:"updatedAt"`
}

// SignageContent 数字标牌内容
type SignageContent struct {
	ID           uint64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	Title        string     `gorm:"column:title;type:varchar(255);not null;comment:标题" json:"title"`
	Description  string     `gorm:"column:description;type:text;comment:描述" json:"description"`
	Body         string     `gorm:"column:body;type:text;comment:正文内容" json:"body"`
	Type         string     `gorm:"column:type;type:varchar(16);default:announcement;index;comment:类型：announcement/promotion/schedule/other" json:"type"`
	MediaURL     string     `gorm:"column:media_url;type:text;comment:媒体链接" json:"mediaUrl"`
	QRCodeURL    string     `gorm:"column:qr_code_url;type:text;comment:二维码图片地址（由外部服务生成）" json:"qrCodeUrl"`
	DisplayOrder int        `gorm:"column:display_order;type:int;default:0;index;comment:展示顺序" json:"displayOrder"`
	IsActive     bool       `gorm:"column:is_active;type:boolean;default:true;index;comment:是否启用" json:"isActive"`
	StartDate    *time.Time `gorm:"column:start_date;type:timestamp;comment:展示开始时间" json:"startDate"`
	EndDate      *time.Time `gorm:"column:end_date;type:timestamp;comment:展示结束时间" json:"endDate"`
	CreatedBy    string     `gorm:"column:created_by;type:varchar(100);default:system;comment:创建人" json:"createdBy"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:timestamp;comment:创建时间" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;type:timestamp;comment:更新时间" json:"updatedAt"`
}

// SignageContent.Type 合法取值
const (
	ContentTypeAnnouncement = "announcement"
	ContentTypePromotion    = "promotion"
	ContentTypeSchedule     = "schedule"
	ContentTypeOther        = "other"
)

func (Schedule) TableName() string        { return "schedules" }
func (BroadcastStatus) TableName() string { return "broadcast_statuses" }
func (SheetEntry) TableName() string      { return "sheet_entries" }
func (SignageContent) TableName() string  { return "signage_contents" }
