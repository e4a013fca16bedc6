package dictionary

// Compact part-of-speech id assignments. The ranges are stable across
// artifact versions: noun family 1-5, verbs 10-30, adjectives 40-46,
// adverbs 50-51, auxiliaries 60-62, misc 70-74 and 80-84, with 255 reserved
// for synthesized unknowns.
const (
	// UnknownPosID tags records synthesized for characters the artifact
	// does not cover.
	UnknownPosID uint8 = 255
)

var posIDByName = map[string]uint8{
	"n": 1, "n-adv": 2, "n-pref": 3, "n-suf": 4, "n-t": 5,
	"v1": 10, "v1-s": 11, "v5aru": 12, "v5b": 13, "v5g": 14,
	"v5k": 15, "v5k-s": 16, "v5m": 17, "v5n": 18, "v5r": 19,
	"v5r-i": 20, "v5s": 21, "v5t": 22, "v5u": 23, "v5u-s": 24,
	"v5uru": 25, "vk": 26, "vs": 27, "vs-i": 28, "vs-s": 29, "vz": 30,
	"adj-i": 40, "adj-ix": 41, "adj-na": 42, "adj-no": 43,
	"adj-pn": 44, "adj-t": 45, "adj-f": 46,
	"adv": 50, "adv-to": 51,
	"aux": 60, "aux-v": 61, "aux-adj": 62,
	"conj": 70, "cop": 71, "ctr": 72, "exp": 73, "int": 74,
	"pn": 80, "pref": 81, "prt": 82, "suf": 83, "unc": 84,
}

// PosID returns the compact id for a POS tag name, 0 when unknown.
func PosID(name string) uint8 {
	return posIDByName[name]
}

// defaultPosTable builds the dense id-indexed name table used when the
// artifact carries no pos table of its own, and by the builder when writing
// one. Unassigned slots stay empty and resolve to "unk".
func defaultPosTable() []string {
	max := 0
	for _, id := range posIDByName {
		if int(id) > max {
			max = int(id)
		}
	}
	names := make([]string, max+1)
	for name, id := range posIDByName {
		names[id] = name
	}
	return names
}

func posNameFrom(table []string, id uint8) string {
	if int(id) < len(table) && table[id] != "" {
		return table[id]
	}
	return "unk"
}
