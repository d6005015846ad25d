package identify

import "strings"

// Image is one photo of the item under analysis.
type Image struct {
	Name string
	Data []byte
}

// Names returns the image filenames in order, skipping blanks.
func Names(images []Image) []string {
	names := make([]string, 0, len(images))
	for _, img := range images {
		if strings.TrimSpace(img.Name) != "" {
			names = append(names, img.Name)
		}
	}
	return names
}

// Payloads returns the raw image bytes in order.
func Payloads(images []Image) [][]byte {
	payloads := make([][]byte, 0, len(images))
	for _, img := range images {
		payloads = append(payloads, img.Data)
	}
	return payloads
}
