package scan

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_SameCodeWithinWindow(t *testing.T) {
	d := NewDebouncer(DefaultWindow)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	assert.True(t, d.Allow("user-1", "7790001"))
	now = now.Add(time.Second)
	assert.False(t, d.Allow("user-1", "7790001"))

	// suppressed detections do not extend the window
	now = now.Add(600 * time.Millisecond)
	assert.True(t, d.Allow("user-1", "7790001"))
}

func TestDebouncer_KeysAndCodesAreIndependent(t *testing.T) {
	d := NewDebouncer(DefaultWindow)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	assert.True(t, d.Allow("user-1", "A"))
	assert.True(t, d.Allow("user-2", "A"))
	assert.True(t, d.Allow("user-1", "B"))
	assert.True(t, d.Allow("user-1", "A"))

	d.Reset("user-1")
	assert.True(t, d.Allow("user-1", "A"))
}

func TestNormalizeText(t *testing.T) {
	code, err := NormalizeText("  7790001\r\n")
	require.NoError(t, err)
	assert.Equal(t, "7790001", code)

	_, err = NormalizeText("   ")
	assert.ErrorIs(t, err, ErrNoCode)
}

func TestImageDecoder_QR(t *testing.T) {
	matrix, err := qrcode.NewQRCodeWriter().Encode("SKU-0042", gozxing.BarcodeFormat_QR_CODE, 240, 240, nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, matrix))

	code, err := NewImageDecoder().Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "SKU-0042", code)
}

func TestImageDecoder_NotAnImage(t *testing.T) {
	_, err := NewImageDecoder().Decode([]byte("nope"))
	assert.Error(t, err)
}

type blockingDecoder struct {
	started chan string
	release chan struct{}
}

func (d *blockingDecoder) Decode(frame []byte) (string, error) {
	d.started <- string(frame)
	<-d.release
	if len(frame) == 0 {
		return "", errors.New("empty")
	}
	return string(frame), nil
}

func TestPipeline_KeepsOnlyLatestFrame(t *testing.T) {
	dec := &blockingDecoder{started: make(chan string, 4), release: make(chan struct{})}
	p := NewPipeline(dec)

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 4)
	frame := func(s string) Frame {
		return Frame{Data: []byte(s), Done: func(code string, err error) {
			mu.Lock()
			got = append(got, code)
			mu.Unlock()
			done <- struct{}{}
		}}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	assert.False(t, p.Submit(frame("first")))
	assert.Equal(t, "first", <-dec.started) // worker busy with "first"

	assert.False(t, p.Submit(frame("second")))
	assert.True(t, p.Submit(frame("third"))) // "second" dropped

	close(dec.release)
	<-done
	<-done
	assert.Equal(t, "third", <-dec.started)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "third"}, got)
}
