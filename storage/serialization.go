// Copyright 2025 QSearch Authors
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
	"fmt"

	"github.com/GaryOcean428/qsearch/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// basinSer serializes a basin vector as a length-prefixed float32 slice.
var basinSer = ord.NewSliceSer[float32](varint.Float32)

// documentSer is a hand-written MUS serializer for core.Document.
// The schema is small and stable enough that generated code is not worth
// carrying a generator command for.
type documentSer struct{}

// DocumentMUS serializes core.Document values for the badger backend.
var DocumentMUS = documentSer{}

func (documentSer) Marshal(d core.Document, bs []byte) (n int) {
	n = ord.String.Marshal(d.DocID, bs)
	n += ord.String.Marshal(d.URL, bs[n:])
	n += ord.String.Marshal(d.Title, bs[n:])
	n += ord.String.Marshal(d.Text, bs[n:])
	n += basinSer.Marshal(d.Basin, bs[n:])
	n += varint.Float64.Marshal(d.Phi, bs[n:])
	n += raw.TimeUnixMicro.Marshal(d.FetchedAt, bs[n:])
	return
}

func (documentSer) Unmarshal(bs []byte) (d core.Document, n int, err error) {
	var n1 int
	if d.DocID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if d.URL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if d.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if d.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if d.Basin, n1, err = basinSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if d.Phi, n1, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if d.FetchedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (documentSer) Size(d core.Document) (size int) {
	size = ord.String.Size(d.DocID)
	size += ord.String.Size(d.URL)
	size += ord.String.Size(d.Title)
	size += ord.String.Size(d.Text)
	size += basinSer.Size(d.Basin)
	size += varint.Float64.Size(d.Phi)
	size += raw.TimeUnixMicro.Size(d.FetchedAt)
	return
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, DocumentMUS.Size(*doc))
	DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &doc, nil
}
