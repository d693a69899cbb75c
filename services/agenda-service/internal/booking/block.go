package booking

import "time"

// Block is a manual exclusion window: vacation, personal time, maintenance.
// A block with an empty ProfessionalID is business-wide and covers every
// professional.
type Block struct {
	ID             string
	BusinessID     string
	ProfessionalID string
	Window         Window
	Reason         string
	BlockType      string
}

// FindBlock returns the first block covering the instant for the given
// professional, or nil. Business-wide blocks match any professional.
func FindBlock(blocks []Block, professionalID string, at time.Time) *Block {
	for i := range blocks {
		b := &blocks[i]
		if b.ProfessionalID != "" && b.ProfessionalID != professionalID {
			continue
		}
		if b.Window.Contains(at) {
			return b
		}
	}
	return nil
}
