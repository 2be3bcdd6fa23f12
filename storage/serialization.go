// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/poiesic/essayguide/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalMaterial serializes a Material to bytes.
func MarshalMaterial(material *core.Material) []byte {
	buf := make([]byte, core.MaterialMUS.Size(*material))
	core.MaterialMUS.Marshal(*material, buf)
	return buf
}

// UnmarshalMaterial deserializes a Material from bytes.
func UnmarshalMaterial(data []byte) (*core.Material, error) {
	material, _, err := core.MaterialMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &material, nil
}

// MarshalEssay serializes a SampleEssay to bytes.
func MarshalEssay(essay *core.SampleEssay) []byte {
	buf := make([]byte, core.SampleEssayMUS.Size(*essay))
	core.SampleEssayMUS.Marshal(*essay, buf)
	return buf
}

// UnmarshalEssay deserializes a SampleEssay from bytes.
func UnmarshalEssay(data []byte) (*core.SampleEssay, error) {
	essay, _, err := core.SampleEssayMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &essay, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}
