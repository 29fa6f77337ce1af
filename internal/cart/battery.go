package cart

import (
	"errors"
	"io/fs"
	"os"
)

// SaveSuffix is appended to the ROM path to name its battery file.
const SaveSuffix = ".battery"

// Battery persists one external RAM bank next to the ROM image.
type Battery struct {
	Path string
}

func NewBattery(romPath string) *Battery {
	return &Battery{Path: romPath + SaveSuffix}
}

// Save writes exactly one RAM bank.
func (b *Battery) Save(bank []byte) error {
	buf := make([]byte, RAMBankSize)
	copy(buf, bank)
	return os.WriteFile(b.Path, buf, 0o644)
}

// Load fills dst from the battery file. A missing file leaves dst untouched
// and is not an error.
func (b *Battery) Load(dst []byte) error {
	data, err := os.ReadFile(b.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}
