package analytics

// palette is cycled by category ordinal. The last entry intentionally repeats the third.
var palette = [...]string{
	"#42A5F5",
	"#66BB6A",
	"#FFA726",
	"#AB47BC",
	"#EF5350",
	"#26C6DA",
	"#FFCA28",
	"#EC407A",
	"#7E57C2",
	"#29B6F6",
	"#8BC34A",
	"#FF7043",
	"#5C6BC0",
	"#FFA726",
}

// PaletteSize is the number of colors before CategoryColor wraps around.
const PaletteSize = len(palette)

// CategoryColor maps a category's position in a breakdown to its chart color.
func CategoryColor(index int) string {
	i := index % PaletteSize
	if i < 0 {
		i += PaletteSize
	}
	return palette[i]
}
