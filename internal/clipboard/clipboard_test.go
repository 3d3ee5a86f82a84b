package clipboard

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/mcncl/humlplay/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	written []string
	err     error
}

func (f *fakeWriter) WriteText(text string) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, text)
	return nil
}

func TestCopy(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		err     error
		notice  string
		wantErr bool
	}{
		{name: "copies text", text: "a: 1\n", notice: NoticeCopied},
		{name: "empty text", text: "", notice: NoticeEmpty},
		{name: "write failure", text: "x", err: stderrors.New("no display"), notice: "Error: no display", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &fakeWriter{err: tt.err}

			notice, err := Copy(w, tt.text)
			assert.Equal(t, tt.notice, notice)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeClipboard}))
				return
			}
			require.NoError(t, err)
			if tt.text == "" {
				assert.Empty(t, w.written)
			} else {
				assert.Equal(t, []string{tt.text}, w.written)
			}
		})
	}
}

func TestNotice_RevertSequencing(t *testing.T) {
	n := NewNotice("Copy", 0)
	assert.Equal(t, DefaultNoticeDuration, n.Duration)
	assert.Equal(t, "Copy", n.Label())
	assert.False(t, n.Active())

	first := n.Show(NoticeCopied)
	second := n.Show(NoticeEmpty)
	assert.Equal(t, NoticeEmpty, n.Label())

	// the older timer must not clobber the newer notice
	assert.False(t, n.Revert(first))
	assert.Equal(t, NoticeEmpty, n.Label())

	assert.True(t, n.Revert(second))
	assert.Equal(t, "Copy", n.Label())
	assert.False(t, n.Active())
}

func TestNewNotice_Duration(t *testing.T) {
	n := NewNotice("Copy", 500*time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, n.Duration)
}
