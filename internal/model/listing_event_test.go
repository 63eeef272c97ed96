package model

import (
	"errors"
	"testing"
)

func TestNextStatus_AllowedTransitions(t *testing.T) {
	cases := []struct {
		current string
		event   ListingEvent
		want    string
	}{
		{StatusDraft, EventPublish, StatusActive},
		{StatusDraft, EventAttachImages, StatusDraft},
		{StatusActive, EventPause, StatusPaused},
		{StatusActive, EventMarkSold, StatusSold},
		{StatusPaused, EventResume, StatusActive},
		{StatusSold, EventReactivate, StatusActive},
		// 编辑在任何状态都合法且不改状态
		{StatusDraft, EventEdit, StatusDraft},
		{StatusActive, EventEdit, StatusActive},
		{StatusPaused, EventEdit, StatusPaused},
		{StatusSold, EventEdit, StatusSold},
		// 删除在任何状态都合法
		{StatusDraft, EventDelete, StatusDeleted},
		{StatusActive, EventDelete, StatusDeleted},
		{StatusPaused, EventDelete, StatusDeleted},
		{StatusSold, EventDelete, StatusDeleted},
	}

	for _, c := range cases {
		got, err := NextStatus(c.current, c.event)
		if err != nil {
			t.Errorf("NextStatus(%s, %s) 报错: %v", c.current, c.event, err)
			continue
		}
		if got != c.want {
			t.Errorf("NextStatus(%s, %s) = %s，期望 %s", c.current, c.event, got, c.want)
		}
	}
}

func TestNextStatus_RejectedTransitions(t *testing.T) {
	cases := []struct {
		current string
		event   ListingEvent
	}{
		{StatusDraft, EventPause},
		{StatusDraft, EventMarkSold},
		{StatusDraft, EventResume},
		{StatusActive, EventPublish},
		{StatusActive, EventResume},
		{StatusPaused, EventPause},
		{StatusPaused, EventMarkSold},
		{StatusSold, EventMarkSold},
		{StatusSold, EventPause},
		{StatusSold, EventPublish},
	}

	for _, c := range cases {
		_, err := NextStatus(c.current, c.event)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("NextStatus(%s, %s) 应返回非法流转，实际 %v", c.current, c.event, err)
		}
	}
}

func TestNextStatus_UnknownStatus(t *testing.T) {
	if _, err := NextStatus("deleted", EventEdit); err == nil {
		t.Error("deleted 不是可流转状态，应报错")
	}
	if _, err := NextStatus("", EventPublish); err == nil {
		t.Error("空状态应报错")
	}
}
