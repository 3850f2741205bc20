package yts

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// magnetTrackers is the announce list embedded in every generated magnet
// link, matching the set YTS publishes on its own download pages.
var magnetTrackers = []string{
	"udp://open.demonii.com:1337/announce",
	"udp://tracker.openbittorrent.com:80",
	"udp://tracker.coppersurfer.tk:6969",
	"udp://glotorrents.pw:6969/announce",
	"udp://tracker.opentrackr.org:1337/announce",
	"udp://torrent.gresille.org:80/announce",
	"udp://p4p.arenabg.com:1337",
	"udp://tracker.leechers-paradise.org:6969",
}

// MagnetLink builds a magnet URI for a torrent hash. The display name is
// base64-encoded so titles with special characters survive client parsing.
func MagnetLink(hash, title string) string {
	if hash == "" {
		return ""
	}
	dn := base64.StdEncoding.EncodeToString([]byte(title))

	var b strings.Builder
	fmt.Fprintf(&b, "magnet:?xt=urn:btih:%s&dn=%s", hash, dn)
	for _, tr := range magnetTrackers {
		fmt.Fprintf(&b, "&tr=%s", tr)
	}
	return b.String()
}

// WebtorLink wraps the magnet URI for a hash into a webtor.io streaming URL
// that plays the torrent in a browser.
func WebtorLink(hash, title string) string {
	if hash == "" {
		return ""
	}
	return "https://webtor.io/#" + url.QueryEscape(MagnetLink(hash, title))
}
