package api

import (
	"errors"
	"fmt"
	"io"

	"github.com/dutchcoders/go-clamd"
)

// ErrMaliciousFile 表示 clamd 判定文件带毒。
var ErrMaliciousFile = errors.New("malicious file detected")

// ClamdScanner 通过 clamd 的 INSTREAM 扫描上传内容。
type ClamdScanner struct {
	Addr string
}

// Scan 读取 r 的全部内容交给 clamd，发现威胁时返回 ErrMaliciousFile。
func (s ClamdScanner) Scan(r io.Reader) error {
	client := clamd.NewClamd(s.Addr)

	abortChan := make(chan bool)
	defer close(abortChan)

	scanChan, err := client.ScanStream(r, abortChan)
	if err != nil {
		return fmt.Errorf("scan stream: %w", err)
	}

	var found error
	for result := range scanChan {
		if result.Status != clamd.RES_OK && found == nil {
			found = fmt.Errorf("%w: %s", ErrMaliciousFile, result.Description)
		}
	}
	return found
}
