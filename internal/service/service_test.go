package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/obsidianatelier/storefront/internal/models"
	"github.com/obsidianatelier/storefront/internal/repo"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(
		&models.Product{},
		&models.ProductImage{},
		&models.Variant{},
		&models.CartItem{},
		&models.TryOn{},
		&models.TryOnQuota{},
		&models.Order{},
		&models.OrderItem{},
		&models.User{},
		&models.LoginCode{},
	))

	return &repo.GormRepo{DB: gdb}
}

// testPhoto returns a small valid PNG, enough to pass image decoding.
func testPhoto(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memStore) PresignGet(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (m *memStore) PresignPut(_ context.Context, key, _ string) (string, error) {
	return "https://upload.test/" + key, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type stubGenerator struct {
	result []byte
	err    error
}

func (g *stubGenerator) Generate(context.Context, string, []string, string, string) ([]byte, error) {
	return g.result, g.err
}

type memPublisher struct {
	mu     sync.Mutex
	events []map[string]any
}

func (p *memPublisher) Publish(_ context.Context, _, _ string, event map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *memPublisher) Close() error { return nil }

func (p *memPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i], _ = e["type"].(string)
	}
	return out
}

type memIndexer struct {
	mu      sync.Mutex
	indexed []string
	deleted []string
}

func (i *memIndexer) IndexProduct(_ context.Context, product *models.Product) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.indexed = append(i.indexed, product.ID.String())
	return nil
}

func (i *memIndexer) DeleteProduct(_ context.Context, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.deleted = append(i.deleted, id)
	return nil
}

type memMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	To      string
	Subject string
	Text    string
}

func (m *memMailer) Send(toEmail, subject, text, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: toEmail, Subject: subject, Text: text})
	return nil
}

type failingMailer struct{}

func (failingMailer) Send(string, string, string, string) error {
	return fmt.Errorf("smtp unavailable")
}
