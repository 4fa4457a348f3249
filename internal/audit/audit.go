package audit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Auditor archives raw payloads next to the audit log so an import can be
// inspected or replayed later.
type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// SaveXML stores an imported document verbatim and returns its file name.
func (a *Auditor) SaveXML(data []byte) (string, error) {
	return a.save(data, "xml")
}

func (a *Auditor) save(data []byte, ext string) (string, error) {
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	filename := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	path := filepath.Join(a.AuditDir, filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	return filename, nil
}

// Path returns the path of an archived payload.
func (a *Auditor) Path(filename string) string {
	return filepath.Join(a.AuditDir, filepath.Base(filename))
}

// Remove deletes an archived payload. A missing file reports fs.ErrNotExist.
func (a *Auditor) Remove(ref string) error {
	return os.Remove(a.Path(ref))
}

// ensureAuditDir creates the audit directory if it doesn't exist
func (a *Auditor) ensureAuditDir() error {
	if _, err := os.Stat(a.AuditDir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return nil
}
