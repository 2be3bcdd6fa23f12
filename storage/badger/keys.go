package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/essayguide/core"
)

// Key prefixes for different data types
const (
	materialRecordPrefix   = "matrec"
	materialCategoryPrefix = "matrecc"
	essayRecordPrefix      = "essrec"
	essayTypePrefix        = "essrect"
	chunkRecordPrefix      = "chkrec"
	chunkVectorPrefix      = "chkvec"
)

// makeMaterialKey generates a key for a material by ID.
func makeMaterialKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", materialRecordPrefix, id))
}

// makeMaterialCategoryKey generates a composite key for the category index.
// Format: prefix:category:id
func makeMaterialCategoryKey(category string, id core.ID) []byte {
	prefix := materialCategoryPrefix + ":" + category + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialMaterialCategoryKey generates a partial key for category scans.
// Format: prefix:category:
func makePartialMaterialCategoryKey(category string) []byte {
	return []byte(materialCategoryPrefix + ":" + category + ":")
}

// makeEssayKey generates a key for a sample essay by ID.
func makeEssayKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", essayRecordPrefix, id))
}

// makeEssayTypeKey generates a composite key for the essay type index.
// Format: prefix:type:id
func makeEssayTypeKey(essayType core.EssayType, id core.ID) []byte {
	prefix := essayTypePrefix + ":" + string(essayType) + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialEssayTypeKey generates a partial key for essay type scans.
// Format: prefix:type:
func makePartialEssayTypeKey(essayType core.EssayType) []byte {
	return []byte(essayTypePrefix + ":" + string(essayType) + ":")
}

// makeChunkKey generates a key for an indexed chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkVectorKey generates a key for a chunk's embedding vector.
func makeChunkVectorKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkVectorPrefix, id))
}
