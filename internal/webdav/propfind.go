package webdav

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// PROPFIND multistatus document. Field tags match by local name so
// both "d:" and "D:" prefixed documents parse.
type multistatus struct {
	XMLName   xml.Name      `xml:"multistatus"`
	Responses []davResponse `xml:"response"`
}

type davResponse struct {
	Href     string     `xml:"href"`
	Propstat []propstat `xml:"propstat"`
}

type propstat struct {
	Prop   davProp `xml:"prop"`
	Status string  `xml:"status"`
}

type davProp struct {
	ResourceType resourceType `xml:"resourcetype"`
}

type resourceType struct {
	Collection *struct{} `xml:"collection"`
}

func (r davResponse) isCollection() bool {
	for _, ps := range r.Propstat {
		if ps.Prop.ResourceType.Collection != nil {
			return true
		}
	}
	return strings.HasSuffix(r.Href, "/")
}

// parseListing turns a Depth-1 multistatus document into entries. The
// first response describes the requested directory itself and is
// dropped; the remaining hrefs are reduced to names relative to it.
func parseListing(r io.Reader) ([]Entry, error) {
	var ms multistatus
	if err := xml.NewDecoder(r).Decode(&ms); err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}
	if len(ms.Responses) == 0 {
		return nil, fmt.Errorf("parse listing: empty multistatus")
	}

	self := ms.Responses[0].Href
	entries := make([]Entry, 0, len(ms.Responses)-1)
	for _, resp := range ms.Responses[1:] {
		name := strings.TrimPrefix(resp.Href, self)
		name = strings.TrimSuffix(name, "/")
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
		if name == "" {
			continue
		}
		entries = append(entries, Entry{Name: name, Dir: resp.isCollection()})
	}
	return entries, nil
}
