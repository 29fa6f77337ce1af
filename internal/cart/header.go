package cart

import (
	"encoding/binary"
	"errors"
	"strings"
)

const (
	headerStart = 0x0100
	headerEnd   = 0x014F

	// RAMBankSize is the size of one switchable external RAM bank.
	RAMBankSize = 0x2000
	// ROMBankSize is the size of one switchable ROM bank.
	ROMBankSize = 0x4000
)

// ErrShortROM is returned when the image cannot hold a full header.
var ErrShortROM = errors.New("ROM too small to contain header")

var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

type Header struct {
	Entry          [4]byte // 0x0100-0x0103
	LogoOK         bool    // 0x0104-0x0133 matches the boot logo
	Title          string  // 0x0134-0x0143 (NUL trimmed)
	NewLicensee    string  // 0x0144-0x0145 (ASCII), if old==0x33
	SGBFlag        byte    // 0x0146
	CartType       byte    // 0x0147
	ROMSizeCode    byte    // 0x0148
	RAMSizeCode    byte    // 0x0149
	Destination    byte    // 0x014A
	OldLicensee    byte    // 0x014B
	ROMVersion     byte    // 0x014C
	HeaderChecksum byte    // 0x014D
	GlobalChecksum uint16  // 0x014E-0x014F

	// Decoded helpers
	ROMSizeBytes int
	ROMBanks     int
	RAMBanks     int
	Battery      bool
	CartTypeStr  string
}

func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd+1 {
		return nil, ErrShortROM
	}

	h := &Header{
		LogoOK:         [48]byte(rom[0x0104:0x0134]) == nintendoLogo,
		Title:          strings.TrimRight(string(rom[0x0134:0x0144]), "\x00"),
		NewLicensee:    string(rom[0x0144:0x0146]),
		SGBFlag:        rom[0x0146],
		CartType:       rom[0x0147],
		ROMSizeCode:    rom[0x0148],
		RAMSizeCode:    rom[0x0149],
		Destination:    rom[0x014A],
		OldLicensee:    rom[0x014B],
		ROMVersion:     rom[0x014C],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
	}
	copy(h.Entry[:], rom[headerStart:headerStart+4])

	h.ROMSizeBytes, h.ROMBanks = decodeROMSize(h.ROMSizeCode)
	h.RAMBanks = decodeRAMBanks(h.RAMSizeCode)
	h.Battery = hasBattery(h.CartType)
	h.CartTypeStr = cartTypeString(h.CartType)

	return h, nil
}

// HeaderChecksum computes x = x - rom[i] - 1 over 0x0134..0x014C.
func HeaderChecksum(rom []byte) byte {
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum
}

func HeaderChecksumOK(rom []byte) bool {
	if len(rom) < 0x014E {
		return false
	}
	return HeaderChecksum(rom) == rom[0x014D]
}

// decodeROMSize follows 32 KiB << code.
func decodeROMSize(code byte) (size, banks int) {
	if code > 0x08 {
		return 0, 0
	}
	size = (32 * 1024) << code
	return size, size / ROMBankSize
}

// decodeRAMBanks maps the RAM size code to a number of 8 KiB banks. The
// 2 KiB code is rounded up to a whole bank.
func decodeRAMBanks(code byte) int {
	switch code {
	case 0x01, 0x02:
		return 1
	case 0x03:
		return 4
	case 0x04:
		return 16
	case 0x05:
		return 8
	default:
		return 0
	}
}

func cartTypeString(code byte) string {
	switch code {
	case 0x00:
		return "ROM ONLY"
	case 0x01:
		return "MBC1"
	case 0x02:
		return "MBC1+RAM"
	case 0x03:
		return "MBC1+RAM+BATTERY"
	case 0x05, 0x06:
		return "MBC2"
	case 0x08:
		return "ROM+RAM"
	case 0x09:
		return "ROM+RAM+BATTERY"
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return "MBC3"
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return "MBC5"
	default:
		return "UNKNOWN"
	}
}
