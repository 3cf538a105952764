package render

import (
	"fmt"
	"image/color"
	"strconv"
)

// clusterPalette is the map palette. Cluster i uses entry i modulo its length.
var clusterPalette = []string{
	"#6495ED", "#228B22", "#B22222", "#D2691E", "#4169E1", "#0000CD", "#9ACD32", "#7B68EE",
	"#FF69B4", "#800000", "#FFFF00", "#008000", "#00FFFF", "#BC8F8F", "#FF00FF", "#696969",
	"#D2B48C", "#FFB6C1", "#A9A9A9", "#32CD32", "#FFD700", "#DAA520", "#CD5C5C", "#DB7093",
	"#FF7F50", "#808000", "#FFFFE0", "#6A5ACD", "#BA55D3", "#8B4513", "#A52A2A", "#FF1493",
	"#00FA9A", "#006400", "#EEE8AA", "#FFEFD5", "#FAF0E6", "#8B008B", "#F0F8FF", "#A0522D",
	"#87CEEB", "#808080", "#5F9EA0", "#2F4F4F", "#FFA07A", "#BDB76B", "#FFFFF0", "#483D8B",
	"#DEB887", "#6B8E23", "#FFFAF0", "#B8860B", "#FFF8DC", "#00BFFF", "#DC143C", "#B0C4DE",
	"#F5FFFA", "#00CED1", "#FDF5E6", "#FFFF00", "#F5DEB3", "#9932CC", "#8B0000", "#FFC0CB",
	"#87CEFA", "#F0FFFF", "#FA8072", "#00008B", "#FAFAD2", "#ADD8E6", "#008080", "#FF6347",
	"#FFFAFA", "#00FF7F", "#AFEEEE", "#9370DB", "#7FFF00", "#00FF00", "#778899", "#98FB98",
	"#4682B4", "#FFFACD", "#9400D3", "#FF8C00", "#FF0000", "#8FBC8F", "#CD853F", "#708090",
	"#F5F5F5", "#F4A460", "#1E90FF", "#FFEBCD", "#2E8B57", "#8A2BE2", "#20B2AA", "#FFA500",
	"#191970", "#F08080", "#E0FFFF", "#EE82EE", "#90EE90", "#F5F5DC", "#FF4500", "#3CB371",
	"#40E0D0", "#800080",
}

// ClusterColorHex returns the palette entry for cluster i.
func ClusterColorHex(i int) string {
	if i < 0 {
		i = -i
	}
	return clusterPalette[i%len(clusterPalette)]
}

// ClusterColor is ClusterColorHex as an opaque color.Color.
func ClusterColor(i int) color.Color {
	c, err := parseHex(ClusterColorHex(i))
	if err != nil {
		// Palette entries are constants; a parse failure is a programming error.
		panic(err)
	}
	return c
}

func parseHex(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
