package upload

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/jlaffaye/ftp"
)

// ftpConn - подмножество методов *ftp.ServerConn, которое нужно бэкенду
type ftpConn interface {
	Login(user, password string) error
	MakeDir(path string) error
	Stor(path string, r io.Reader) error
	Quit() error
}

type ftpDialer func(ctx context.Context, addr string) (ftpConn, error)

// FTPConfig - параметры удаленного хранилища
type FTPConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Folder        string
	PublicBaseURL string
}

// FTPBackend загружает изображения на FTP-сервер.
// На каждую загрузку открывается отдельное соединение, поэтому бэкенд безопасен для конкурентного использования.
type FTPBackend struct {
	cfg  FTPConfig
	dial ftpDialer
}

func NewFTPBackend(cfg FTPConfig) *FTPBackend {
	return &FTPBackend{
		cfg:  cfg,
		dial: dialFTP,
	}
}

func dialFTP(ctx context.Context, addr string) (ftpConn, error) {
	return ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(10*time.Second))
}

func (b *FTPBackend) Put(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	addr := b.cfg.Host + ":" + b.cfg.Port
	conn, err := b.dial(ctx, addr)
	if err != nil {
		return "", fmt.Errorf("failed to connect to FTP: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login(b.cfg.User, b.cfg.Password); err != nil {
		return "", fmt.Errorf("failed to login to FTP: %w", err)
	}

	remotePath := name
	if b.cfg.Folder != "" {
		// Каталог может уже существовать, ошибку MKD игнорируем - Stor сообщит о реальной проблеме
		_ = conn.MakeDir(b.cfg.Folder)
		remotePath = path.Join(b.cfg.Folder, name)
	}

	if err := conn.Stor(remotePath, r); err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return b.cfg.PublicBaseURL + "/" + remotePath, nil
}
