package model

import (
	"errors"
	"fmt"
)

// ==================== 状态机事件 ====================

// ListingEvent 挂牌生命周期事件
// 状态只能经由这里定义的事件流转，编辑永远不改状态
type ListingEvent string

const (
	EventAttachImages ListingEvent = "attach_images" // 向导第二步，draft 内补图
	EventPublish      ListingEvent = "publish"       // draft -> active
	EventPause        ListingEvent = "pause"         // active -> paused
	EventResume       ListingEvent = "resume"        // paused -> active
	EventMarkSold     ListingEvent = "mark_sold"     // active -> sold
	EventReactivate   ListingEvent = "reactivate"    // sold -> active
	EventEdit         ListingEvent = "edit"          // 任意非删除状态，状态不变
	EventDelete       ListingEvent = "delete"        // 任意状态，物理删除行
)

// StatusDeleted 删除事件的目标哨兵值
// 不会落库：服务层看到它就执行行删除
const StatusDeleted = "deleted"

// ErrInvalidTransition 非法流转
var ErrInvalidTransition = errors.New("当前状态不允许该操作")

// transitions 流转表：{当前状态, 事件} -> 目标状态
var transitions = map[string]map[ListingEvent]string{
	StatusDraft: {
		EventAttachImages: StatusDraft,
		EventPublish:      StatusActive,
		EventEdit:         StatusDraft,
		EventDelete:       StatusDeleted,
	},
	StatusActive: {
		EventPause:    StatusPaused,
		EventMarkSold: StatusSold,
		EventEdit:     StatusActive,
		EventDelete:   StatusDeleted,
	},
	StatusPaused: {
		EventResume: StatusActive,
		EventEdit:   StatusPaused,
		EventDelete: StatusDeleted,
	},
	StatusSold: {
		EventReactivate: StatusActive,
		EventEdit:       StatusSold,
		EventDelete:     StatusDeleted,
	},
}

// NextStatus 计算事件后的目标状态
// 只做流转合法性判断，发布前的字段守卫由 Product.CanPublish 负责
func NextStatus(current string, event ListingEvent) (string, error) {
	events, ok := transitions[current]
	if !ok {
		return "", fmt.Errorf("未知状态: %s", current)
	}
	next, ok := events[event]
	if !ok {
		return "", fmt.Errorf("%w: %s 状态下不能执行 %s", ErrInvalidTransition, current, event)
	}
	return next, nil
}
