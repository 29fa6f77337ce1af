package cart

import (
	"fmt"
	"log"
	"os"
)

// LoadError reports a ROM image that could not be turned into a cartridge.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("cart: load %q: %v", e.Path, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// Image is a loaded cartridge together with its parsed header and battery file.
type Image struct {
	Cartridge
	Header *Header
	Path   string

	battery *Battery
}

// Load reads a ROM file and builds its cartridge. Battery types pick up
// RAM from Path+SaveSuffix if that file exists.
func Load(path string) (*Image, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return New(rom, path)
}

// New builds a cartridge from ROM bytes. path names the image for logging
// and keys the battery file; it may be empty to disable persistence.
func New(rom []byte, path string) (*Image, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	log.Printf("cart: %q type=%02X (%s) rom=%dKiB ram=%d banks ver=%02X",
		h.Title, h.CartType, h.CartTypeStr, h.ROMSizeBytes/1024, h.RAMBanks, h.ROMVersion)
	if !HeaderChecksumOK(rom) {
		log.Printf("cart: warning: header checksum mismatch (have %02X, computed %02X)", h.HeaderChecksum, HeaderChecksum(rom))
	}

	img := &Image{Header: h, Path: path}
	if h.Battery && path != "" {
		img.battery = NewBattery(path)
	}
	img.Cartridge = NewCartridge(rom, h, img.battery)

	if bb, ok := img.Cartridge.(BatteryBacked); ok && img.battery != nil {
		buf := make([]byte, RAMBankSize)
		if err := img.battery.Load(buf); err != nil {
			log.Printf("cart: battery load %s: %v", img.battery.Path, err)
		} else {
			bb.LoadRAM(buf)
		}
	}
	return img, nil
}

// Save writes the active RAM bank to the battery file.
func (img *Image) Save() error {
	bb, ok := img.Cartridge.(BatteryBacked)
	if !ok || img.battery == nil {
		return nil
	}
	ram := bb.SaveRAM()
	if ram == nil {
		return nil
	}
	if err := img.battery.Save(ram); err != nil {
		return fmt.Errorf("cart: battery save %s: %w", img.battery.Path, err)
	}
	bb.ClearDirty()
	return nil
}

// SaveIfDirty saves only when RAM changed since the last save.
func (img *Image) SaveIfDirty() error {
	bb, ok := img.Cartridge.(BatteryBacked)
	if !ok || !bb.Dirty() {
		return nil
	}
	return img.Save()
}

// HasBattery reports whether RAM is persisted for this image.
func (img *Image) HasBattery() bool { return img.battery != nil }
