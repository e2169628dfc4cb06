package assets

import (
	"context"
	"fmt"
	"io"

	"github.com/dutchcoders/go-clamd"
)

// Scanner 在上传前检查内容是否携带恶意载荷。
type Scanner interface {
	Scan(ctx context.Context, r io.Reader) error
}

// ClamdScanner 通过 clamd 的流式接口扫描上传内容。
type ClamdScanner struct {
	addr string
}

// NewClamdScanner 返回指向给定 clamd 地址的扫描器。
func NewClamdScanner(addr string) *ClamdScanner {
	return &ClamdScanner{addr: addr}
}

// Scan 将内容流交给 clamd；检出病毒时包装为 ErrInvalidUpload。
func (s *ClamdScanner) Scan(_ context.Context, r io.Reader) error {
	client := clamd.NewClamd(s.addr)

	abortChan := make(chan bool)
	defer close(abortChan)

	scanChan, err := client.ScanStream(r, abortChan)
	if err != nil {
		return fmt.Errorf("scan stream: %w", err)
	}

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return fmt.Errorf("%w: malicious file detected", ErrInvalidUpload)
		}
	}
	return nil
}
