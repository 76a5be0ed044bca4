package database

import (
	"time"

	"gorm.io/gorm"
)

// DiaryEntry 日记模型
// AuthorNickname / AuthorAvatar 是创建时的资料快照，之后修改个人资料不会影响已写的日记
// IsDraft 只能从 true 变为 false
type DiaryEntry struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         string    `gorm:"not null;size:36;index:idx_diary_user_created,priority:1" json:"user_id"` // 所属账户
	Content        string    `gorm:"type:text;not null" json:"content"`                                       // 正文
	Location       *string   `gorm:"size:255" json:"location"`                                                // 地址或 "lat, lon" 坐标串
	IsPrivate      bool      `gorm:"not null;default:false" json:"is_private"`                                // 是否私密
	IsDraft        bool      `gorm:"not null;default:false" json:"is_draft"`                                  // 是否草稿
	AlbumID        *string   `gorm:"index;size:36" json:"album_id"`                                           // 图片归属的相册
	NotebookID     *string   `gorm:"index;size:36" json:"notebook_id"`                                        // 所属笔记本
	AuthorNickname string    `gorm:"size:100" json:"author_nickname"`                                         // 作者昵称快照
	AuthorAvatar   string    `gorm:"type:text" json:"author_avatar"`                                          // 作者头像快照
	CreatedAt      time.Time `gorm:"index:idx_diary_user_created,priority:2" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName 指定表名
func (DiaryEntry) TableName() string {
	return TableDiary
}

// BeforeCreate 生成主键
func (d *DiaryEntry) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

// DiaryComment 日记评论，只追加不修改
type DiaryComment struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	DiaryID        string    `gorm:"not null;index;size:36" json:"diary_id"`
	UserID         string    `gorm:"index;size:36" json:"user_id"` // 评论者
	Content        string    `gorm:"type:text;not null" json:"content"`
	AuthorNickname string    `gorm:"size:100" json:"author_nickname"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName 指定表名
func (DiaryComment) TableName() string {
	return TableDiaryComment
}

// BeforeCreate 生成主键
func (c *DiaryComment) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Album 相册
type Album struct {
	ID        string       `gorm:"primaryKey;size:36" json:"id"`
	UserID    string       `gorm:"not null;size:36;index:idx_album_user_sort,priority:1" json:"user_id"`
	Name      string       `gorm:"not null;size:100" json:"name"`
	SortOrder int          `gorm:"not null;default:0;index:idx_album_user_sort,priority:2" json:"sort_order"` // 展示顺序，可重复
	CreatedAt time.Time    `json:"created_at"`
	Images    []AlbumImage `gorm:"-" json:"images,omitempty"` // 列表接口填充的最近图片
}

// TableName 指定表名
func (Album) TableName() string {
	return TableAlbum
}

// BeforeCreate 生成主键
func (a *Album) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// AlbumImage 相册图片
// 删除相册时必须先删除其全部图片
type AlbumImage struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	AlbumID    string    `gorm:"not null;size:36;index:idx_album_image_album_created,priority:1" json:"album_id"`
	DiaryID    *string   `gorm:"index;size:36" json:"diary_id"` // 产生该图片的日记
	ImageURL   string    `gorm:"not null;size:1024" json:"image_url"`
	StorageKey string    `gorm:"size:512" json:"storage_key"`
	CreatedAt  time.Time `gorm:"index:idx_album_image_album_created,priority:2" json:"created_at"`
}

// TableName 指定表名
func (AlbumImage) TableName() string {
	return TableAlbumImage
}

// BeforeCreate 生成主键
func (i *AlbumImage) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// Notebook 笔记本，只用于给日记分组
// 删除笔记本不会删除日记，只会解除关联
type Notebook struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"not null;index;size:36" json:"user_id"`
	Name      string    `gorm:"not null;size:100" json:"name"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (Notebook) TableName() string {
	return TableNotebook
}

// BeforeCreate 生成主键
func (n *Notebook) BeforeCreate(*gorm.DB) error {
	ensureID(&n.ID)
	return nil
}

// Countdown 倒数日或纪念日
type Countdown struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"not null;size:36;index:idx_countdown_user_target,priority:1" json:"user_id"`
	Title      string    `gorm:"not null;size:100" json:"title"`
	TargetDate string    `gorm:"not null;size:10;index:idx_countdown_user_target,priority:2" json:"target_date"` // YYYY-MM-DD
	Type       string    `gorm:"not null;size:20" json:"type"`                                                   // countdown 或 anniversary
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 指定表名
func (Countdown) TableName() string {
	return TableCountdown
}

// BeforeCreate 生成主键
func (c *Countdown) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
