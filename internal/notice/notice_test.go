package notice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoticeText(t *testing.T) {
	n := Notice{Kind: KindService, Title: "Image generation failed", Message: "bad prompt"}
	assert.Equal(t, "Image generation failed:\nbad prompt", n.Text())

	plain := Notice{Kind: KindValidation, Message: "Please enter a prompt!"}
	assert.Equal(t, "Please enter a prompt!", plain.Text())
}

func TestNoticeIsError(t *testing.T) {
	assert.True(t, Notice{Kind: KindTransport}.IsError())
	assert.True(t, Notice{Kind: KindClearFailed}.IsError())
	assert.False(t, Notice{Kind: KindClearSucceeded}.IsError())
}

func TestQueueAcknowledgesInOrder(t *testing.T) {
	q := NewQueue()
	_, ok := q.Peek()
	assert.False(t, ok)

	q.Notify(Notice{Message: "first"})
	q.Notify(Notice{Message: "second"})
	assert.Equal(t, 2, q.Len())

	n, ok := q.Peek()
	assert.True(t, ok)
	assert.Equal(t, "first", n.Message)

	assert.True(t, q.Ack())
	n, _ = q.Peek()
	assert.Equal(t, "second", n.Message)

	assert.False(t, q.Ack())
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.Ack())
}

func TestRecorder(t *testing.T) {
	var r Recorder
	var n Notifier = &r
	n.Notify(Notice{Kind: KindValidation})
	assert.Len(t, r.All(), 1)

	Discard.Notify(Notice{Kind: KindService})
}
