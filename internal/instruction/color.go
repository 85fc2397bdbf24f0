package instruction

import (
	"fmt"
	"math/rand"
)

// RandomNoteColor returns a random RGB color at 80% opacity (CC alpha).
// Purely cosmetic: response notes get distinct colors so they stand out from
// the notes that prompted them.
func RandomNoteColor() string {
	return fmt.Sprintf("#%02x%02x%02xCC", rand.Intn(256), rand.Intn(256), rand.Intn(256))
}
