package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sacde-pdd/backend/internal/model"
	pkgerrors "sacde-pdd/backend/pkg/errors"
)

// OpKind 批量写操作类型
type OpKind int

const (
	OpCreate OpKind = iota
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Op 单条写操作，Entity 为模型指针
type Op struct {
	Kind   OpKind
	Entity interface{}
}

// Batch 收集一次业务操作涉及的全部写入，由 UnitOfWork 原子提交
type Batch struct {
	ops []Op
}

// NewBatch 创建空批次
func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Create(entity interface{}) *Batch {
	b.ops = append(b.ops, Op{Kind: OpCreate, Entity: entity})
	return b
}

func (b *Batch) Update(entity interface{}) *Batch {
	b.ops = append(b.ops, Op{Kind: OpUpdate, Entity: entity})
	return b
}

func (b *Batch) Delete(entity interface{}) *Batch {
	b.ops = append(b.ops, Op{Kind: OpDelete, Entity: entity})
	return b
}

// Ops 按加入顺序返回操作
func (b *Batch) Ops() []Op {
	return b.ops
}

// Len 操作数
func (b *Batch) Len() int {
	return len(b.ops)
}

// UnitOfWork 原子提交：要么全部写入，要么全部不写入。
// 提交失败统一包装为 pkgerrors.ErrCommitFailed（可重试，未写入任何数据）。
type UnitOfWork interface {
	Commit(ctx context.Context, batch *Batch) error
}

// CheckEntity 校验批次中的实体类型
func CheckEntity(entity interface{}) error {
	switch entity.(type) {
	case *model.DailyReport, *model.LaborEntry, *model.Permission:
		return nil
	default:
		return fmt.Errorf("%w: %T", pkgerrors.ErrUnsupportedEntity, entity)
	}
}

// ── GORM 事务实现 ──

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork 基于 gorm 事务的 UnitOfWork
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Commit(ctx context.Context, batch *Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}
	for _, op := range batch.ops {
		if err := CheckEntity(op.Entity); err != nil {
			return err
		}
	}

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, op := range batch.ops {
			var err error
			switch op.Kind {
			case OpCreate:
				err = tx.Omit(clause.Associations).Create(op.Entity).Error
			case OpUpdate:
				err = tx.Omit(clause.Associations).Save(op.Entity).Error
			case OpDelete:
				err = tx.Delete(op.Entity).Error
			default:
				err = fmt.Errorf("未知操作类型 %s", op.Kind)
			}
			if err != nil {
				return fmt.Errorf("op #%d %s %T: %w", i, op.Kind, op.Entity, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", pkgerrors.ErrCommitFailed, err)
	}
	return nil
}
