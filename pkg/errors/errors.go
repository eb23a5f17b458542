package errors

import "errors"

// ErrCommitFailed 批量提交失败：存储层拒绝或网络异常，未写入任何数据，可重试
var ErrCommitFailed = errors.New("提交失败，数据未保存，请重试")

// ErrUnsupportedEntity 批量操作中出现无法持久化的实体类型
var ErrUnsupportedEntity = errors.New("不支持的实体类型")
