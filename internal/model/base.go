package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── PostgreSQL TEXT[] 自定义类型 ──

// StringArray 对应 PostgreSQL TEXT[] 类型，实现 GORM Scanner/Valuer 接口。
// 元素均为 uuid，不含逗号与引号。
type StringArray []string

// Scan 将 PostgreSQL 返回的 {a,b,c} 文本解析为 []string。
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("StringArray.Scan: unsupported type %T", src)
	}
	s = strings.Trim(s, "{}")
	if s == "" {
		*a = StringArray{}
		return nil
	}
	parts := strings.Split(s, ",")
	arr := make(StringArray, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"`)
		if p != "" {
			arr = append(arr, p)
		}
	}
	*a = arr
	return nil
}

// Value 将 []string 序列化为 PostgreSQL {a,b,c} 文本；nil 写为空数组（列为 NOT NULL）。
func (a StringArray) Value() (driver.Value, error) {
	return "{" + strings.Join(a, ",") + "}", nil
}

// Contains 判断是否包含 id
func (a StringArray) Contains(id string) bool {
	for _, v := range a {
		if v == id {
			return true
		}
	}
	return false
}

// ── JSONB 工时映射 ──

// HourMap 工时映射：key 为阶段 / 类型 ID，value 为小时数。
// 以 JSONB 存储，小时数使用 decimal 精确表示（0.25h 等）。
type HourMap map[string]decimal.Decimal

// Scan 解析 JSONB
func (m *HourMap) Scan(src interface{}) error {
	if src == nil {
		*m = HourMap{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("HourMap.Scan: unsupported type %T", src)
	}
	out := HourMap{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &out); err != nil {
			return fmt.Errorf("HourMap.Scan: %w", err)
		}
	}
	*m = out
	return nil
}

// Value 序列化为 JSONB；nil 写为 {}
func (m HourMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]decimal.Decimal(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Total 所有值之和
func (m HourMap) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

// IsEmpty 无任何正数工时
func (m HourMap) IsEmpty() bool {
	for _, v := range m {
		if v.IsPositive() {
			return false
		}
	}
	return true
}

// Normalized 返回去掉零值后的副本
func (m HourMap) Normalized() HourMap {
	out := make(HourMap, len(m))
	for k, v := range m {
		if !v.IsZero() {
			out[k] = v
		}
	}
	return out
}

// Clone 深拷贝
func (m HourMap) Clone() HourMap {
	out := make(HourMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Keys 按字典序返回 key
func (m HourMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ── 日期 ──

// DateLayout 接口与存储统一使用的日期格式
const DateLayout = "2006-01-02"

// ParseDate 解析 YYYY-MM-DD，返回 UTC 零点
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式错误 %q: %w", s, err)
	}
	return t, nil
}

// DateOf 截断为当天 UTC 零点
func DateOf(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// BaseModel 通用审计字段（业务单据嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:varchar(64)"                   json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(64)"                   json:"updated_by,omitempty"`
}

// CatalogModel 目录表时间戳
type CatalogModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ensureID 主键为空时生成 uuid（PostgreSQL 侧另有 gen_random_uuid() 默认值）
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
