package mykafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestProducer_PublishEvent(t *testing.T) {
	fw := &fakeWriter{}
	p := &Producer{writer: fw}

	event := map[string]interface{}{"type": "user_registered", "username": "alice"}
	require.NoError(t, p.PublishEvent(context.Background(), TopicUserEvents, "7", event))

	require.Len(t, fw.msgs, 1)
	msg := fw.msgs[0]
	assert.Equal(t, TopicUserEvents, msg.Topic)
	assert.Equal(t, "7", string(msg.Key))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "user_registered", got["type"])

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestProducer_PublishEvent_Errors(t *testing.T) {
	boom := errors.New("broker down")
	p := &Producer{writer: &fakeWriter{err: boom}}

	err := p.PublishEvent(context.Background(), TopicQuizEvents, "k", map[string]interface{}{"a": 1})
	require.ErrorIs(t, err, boom)

	err = p.PublishEvent(context.Background(), TopicQuizEvents, "k", func() {})
	require.Error(t, err)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	require.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}
