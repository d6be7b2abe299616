package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// fakeSource serves title n as n words of "shall", unless told otherwise
type fakeSource struct {
	mu      sync.Mutex
	markup  map[int]string
	failing map[int]bool
	calls   []int
}

func newFakeSource() *fakeSource {
	return &fakeSource{markup: map[int]string{}, failing: map[int]bool{}}
}

func (f *fakeSource) FetchTitle(ctx context.Context, date string, titleNumber int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, titleNumber)

	if f.failing[titleNumber] {
		return nil, &model.FetchError{
			TitleNumber: titleNumber,
			Date:        date,
			StatusCode:  503,
			Err:         fmt.Errorf("status 503"),
		}
	}
	if m, ok := f.markup[titleNumber]; ok {
		return []byte(m), nil
	}
	return []byte(shallMarkup(titleNumber)), nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func shallMarkup(words int) string {
	return "<?xml version=\"1.0\"?><ECFR><DIV1><P>" + strings.TrimSpace(strings.Repeat("shall ", words)) + "</P></DIV1></ECFR>"
}
