package tags

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// oggPage is one physical page of an Ogg bitstream. Parsing follows the
// standard header layout and segment-table packet splitting (capture
// pattern, 27-byte header, granule position, lacing table); serializing
// adds the matching write side, including the Ogg CRC, so tags can
// round-trip a file's comment packet.
type oggPage struct {
	Version        byte
	HeaderType     byte
	GranulePos     uint64
	SerialNumber   uint32
	SequenceNumber uint32
	Segments       [][]byte // packet fragments, already split by the lacing table

	// LastSegmentComplete is false when the page's final lacing value was
	// 255, meaning the last entry of Segments is an unterminated packet
	// fragment that continues onto the next page.
	LastSegmentComplete bool
}

const (
	oggHeaderFlagContinued = 0x01
	oggHeaderFlagFirst     = 0x02
	oggHeaderFlagLast      = 0x04
)

// parseOggPages splits an Ogg bitstream into its constituent pages.
func parseOggPages(data []byte) ([]oggPage, error) {
	var pages []oggPage
	pos := 0
	for pos < len(data) {
		if pos+27 > len(data) || !bytes.Equal(data[pos:pos+4], []byte("OggS")) {
			return nil, fmt.Errorf("ogg: bad capture pattern at offset %d", pos)
		}
		header := data[pos : pos+27]
		version := header[4]
		headerType := header[5]
		granule := binary.LittleEndian.Uint64(header[6:14])
		serial := binary.LittleEndian.Uint32(header[14:18])
		seq := binary.LittleEndian.Uint32(header[18:22])
		segCount := int(header[26])

		if pos+27+segCount > len(data) {
			return nil, fmt.Errorf("ogg: truncated segment table at offset %d", pos)
		}
		lacing := data[pos+27 : pos+27+segCount]

		bodyStart := pos + 27 + segCount
		bodyPos := bodyStart
		var segments [][]byte
		segLen := 0
		segStart := bodyPos
		for _, l := range lacing {
			segLen += int(l)
			bodyPos += int(l)
			if l < 255 {
				segments = append(segments, data[segStart:segStart+segLen])
				segStart += segLen
				segLen = 0
			}
		}
		lastComplete := true
		if segLen > 0 {
			// final lacing value was 255: packet continues onto the next page.
			segments = append(segments, data[segStart:segStart+segLen])
			lastComplete = false
		}
		if bodyPos > len(data) {
			return nil, fmt.Errorf("ogg: page body runs past end of file at offset %d", pos)
		}

		pages = append(pages, oggPage{
			Version:             version,
			HeaderType:          headerType,
			GranulePos:          granule,
			SerialNumber:        serial,
			SequenceNumber:      seq,
			Segments:            segments,
			LastSegmentComplete: lastComplete,
		})
		pos = bodyPos
	}
	return pages, nil
}

// serializeOggPages renders pages back to an Ogg bitstream, recomputing
// every page's CRC (the Ogg CRC, not the usual zlib one).
func serializeOggPages(pages []oggPage) []byte {
	var buf bytes.Buffer
	for _, p := range pages {
		lacing, body := laceSegments(p.Segments)

		header := make([]byte, 27)
		copy(header[0:4], "OggS")
		header[4] = p.Version
		header[5] = p.HeaderType
		binary.LittleEndian.PutUint64(header[6:14], p.GranulePos)
		binary.LittleEndian.PutUint32(header[14:18], p.SerialNumber)
		binary.LittleEndian.PutUint32(header[18:22], p.SequenceNumber)
		// header[22:26] CRC, filled in below
		header[26] = byte(len(lacing))

		page := make([]byte, 0, len(header)+len(lacing)+len(body))
		page = append(page, header...)
		page = append(page, lacing...)
		page = append(page, body...)

		crc := oggCRC32(page)
		binary.LittleEndian.PutUint32(page[22:26], crc)

		buf.Write(page)
	}
	return buf.Bytes()
}

// laceSegments builds the lacing table and concatenated body for a page's
// packet fragments: each fragment gets one 255 lacing value per full
// 255-byte run, then one final value below 255 (zero for an exact multiple
// of 255), so every fragment is laced as a complete packet.
func laceSegments(segments [][]byte) (lacing []byte, body []byte) {
	for _, seg := range segments {
		n := len(seg)
		for n >= 255 {
			lacing = append(lacing, 255)
			n -= 255
		}
		lacing = append(lacing, byte(n))
		body = append(body, seg...)
	}
	return lacing, body
}

var oggCRCTable = buildOggCRCTable()

func buildOggCRCTable() [256]uint32 {
	const poly = 0x04c11db7
	var table [256]uint32
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for bit := 0; bit < 8; bit++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// oggCRC32 computes the CRC used in an Ogg page header, over the page with
// its CRC field zeroed.
func oggCRC32(page []byte) uint32 {
	zeroed := make([]byte, len(page))
	copy(zeroed, page)
	zeroed[22], zeroed[23], zeroed[24], zeroed[25] = 0, 0, 0, 0

	var crc uint32
	for _, b := range zeroed {
		crc = (crc << 8) ^ oggCRCTable[byte(crc>>24)^b]
	}
	return crc
}

func (p oggPage) continuesPacket() bool {
	return p.HeaderType&oggHeaderFlagContinued != 0
}

// maxPageBody is the largest packet this package will write into a single
// Ogg page: a page holds at most 255 lacing values, and a packet must end
// on one below 255, so 254 full 255-byte segments plus a final 254-byte
// one. Opus identification and comment
// headers are written as a single page each; a comment packet (vendor
// string plus comments, including any cover-art picture block) that would
// overflow this has its picture block dropped rather than spanning pages.
const maxPageBody = 255*255 - 1

// secondHeaderPacket reassembles the packet that starts on the second page
// of an Opus stream (the comment header, per the Ogg Opus mapping, always
// follows the single-page identification header and always ends its own
// page). It stitches segments across however many pages the packet
// continues onto, and returns the index of the first page after it.
func secondHeaderPacket(pages []oggPage) (packet []byte, nextPageIdx int, err error) {
	if len(pages) < 2 {
		return nil, 0, fmt.Errorf("ogg: stream has no comment header page")
	}
	i := 1
	for ; i < len(pages); i++ {
		p := pages[i]
		for _, seg := range p.Segments {
			packet = append(packet, seg...)
		}
		if p.LastSegmentComplete {
			i++
			break
		}
	}
	return packet, i, nil
}
