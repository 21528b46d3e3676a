package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelpetit/polychat/internal/core"
	"github.com/aurelpetit/polychat/internal/core/llm"
)

func newTestFileService(db *fakeDB, store *fakeStore, providers ...*fakeProvider) *FileService {
	if len(providers) == 0 {
		providers = []*fakeProvider{{name: "chatgpt", text: "answer", seconds: 0.5}}
	}
	cps := make([]core.Provider, len(providers))
	for i, p := range providers {
		cps[i] = p
	}
	return NewFileService(db, store, llm.NewGateway(cps...), 1<<20)
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	svc := newTestFileService(newFakeDB(), newFakeStore())

	_, err := svc.Upload(context.Background(), "user-1", "malware.exe", "", []byte("x"))
	assert.ErrorIs(t, err, ErrDisallowedExtension)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc := newTestFileService(newFakeDB(), newFakeStore())

	big := make([]byte, 2<<20)
	_, err := svc.Upload(context.Background(), "user-1", "big.txt", "text/plain", big)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUploadStoresUnderFreshName(t *testing.T) {
	db := newFakeDB()
	store := newFakeStore()
	svc := newTestFileService(db, store)

	f, err := svc.Upload(context.Background(), "user-1", "report.pdf", "", []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", f.OriginalFilename)
	assert.Equal(t, f.ID+".pdf", f.StoredFilename)
	assert.Equal(t, "application/pdf", f.ContentType, "missing content type falls back to the allow-list MIME")
	assert.Equal(t, "pending", f.AnalysisStatus)
	assert.Contains(t, store.blobs, f.StoredFilename)

	g, err := svc.Upload(context.Background(), "user-1", "report.pdf", "", []byte("%PDF"))
	require.NoError(t, err)
	assert.NotEqual(t, f.StoredFilename, g.StoredFilename, "same client filename never collides in storage")
}

func TestDeleteRemovesBlobAndRecord(t *testing.T) {
	db := newFakeDB()
	store := newFakeStore()
	svc := newTestFileService(db, store)

	f, err := svc.Upload(context.Background(), "user-1", "notes.txt", "text/plain", []byte("hi"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "user-1", f.ID))
	assert.NotContains(t, store.blobs, f.StoredFilename)

	err = svc.Delete(context.Background(), "user-1", f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOtherUsersFileIsNotFound(t *testing.T) {
	svc := newTestFileService(newFakeDB(), newFakeStore())

	f, err := svc.Upload(context.Background(), "owner", "notes.txt", "text/plain", []byte("hi"))
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "intruder", f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAskSendsFileContextToNamedProvider(t *testing.T) {
	db := newFakeDB()
	store := newFakeStore()
	provider := &fakeProvider{name: "chatgpt", text: "a is one", seconds: 0.4}
	svc := newTestFileService(db, store, provider)

	f, err := svc.Upload(context.Background(), "user-1", "data.json", "application/json", []byte(`{"a":1}`))
	require.NoError(t, err)

	out, err := svc.Ask(context.Background(), "user-1", f.ID, "what is a?", "chatgpt")
	require.NoError(t, err)

	assert.Equal(t, "a is one", out.Response.Text)
	assert.Contains(t, provider.lastPrompt(), "{\n  \"a\": 1\n}")
	assert.Contains(t, provider.lastPrompt(), "what is a?")
}

func TestAskUnsupportedModelAnsweredInline(t *testing.T) {
	db := newFakeDB()
	store := newFakeStore()
	provider := &fakeProvider{name: "chatgpt", text: "unused", seconds: 0}
	svc := newTestFileService(db, store, provider)

	f, err := svc.Upload(context.Background(), "user-1", "notes.txt", "text/plain", []byte("hi"))
	require.NoError(t, err)

	out, err := svc.Ask(context.Background(), "user-1", f.ID, "hello?", "mistral")
	require.NoError(t, err, "an unknown model is answered inline, not rejected")
	assert.Equal(t, "Unsupported AI model: mistral", out.Response.Text)
	assert.EqualValues(t, 0, provider.calls.Load())
}

func TestAskExtractionFailureIsExplicit(t *testing.T) {
	db := newFakeDB()
	store := newFakeStore()
	provider := &fakeProvider{name: "chatgpt", text: "unused", seconds: 0}
	svc := newTestFileService(db, store, provider)

	f, err := svc.Upload(context.Background(), "user-1", "broken.json", "application/json", []byte(`{"a":`))
	require.NoError(t, err, "upload does not validate content")

	_, err = svc.Ask(context.Background(), "user-1", f.ID, "what is a?", "chatgpt")
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.EqualValues(t, 0, provider.calls.Load())
}
