package event

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

func TestAuditLogger_Handle(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	audit := NewAuditLogger(zap.New(core))

	b := book.NewBook("Clean Code", "Robert Martin", "Prentice Hall", 2008)
	b.ID = 1058
	body, err := json.Marshal(NewMessage(book.NewEvent(book.EventDeleted, b)))
	require.NoError(t, err)

	require.NoError(t, audit.Handle(context.Background(), "book.deleted", body))

	entries := logs.FilterMessage("book event").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "book.deleted", ctx["type"])
	assert.EqualValues(t, 1058, ctx["book_id"])
	assert.NotContains(t, ctx, "image_url")
}

func TestAuditLogger_DropsMalformed(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	audit := NewAuditLogger(zap.New(core))

	assert.NoError(t, audit.Handle(context.Background(), "book.created", []byte("not json")))
	assert.NoError(t, audit.Handle(context.Background(), "book.created", []byte(`{"book":{}}`)))

	assert.Equal(t, 2, logs.FilterMessage("drop malformed book event").Len())
	assert.Equal(t, 0, logs.FilterMessage("book event").Len())
}
