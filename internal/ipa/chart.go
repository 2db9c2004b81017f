package ipa

// chart is the built-in descriptor data. Labels follow IPA chart terms,
// lowercase, one concept per label. Entries that modify a preceding base
// symbol carry the "diacritic" label; phone construction strips it after
// merging the remaining labels into the base.
var chart = map[rune][]string{
	// vowels
	'i': {"close", "front", "unrounded", "vowel"},
	'y': {"close", "front", "rounded", "vowel"},
	'ɨ': {"close", "central", "unrounded", "vowel"},
	'ʉ': {"close", "central", "rounded", "vowel"},
	'ɯ': {"close", "back", "unrounded", "vowel"},
	'u': {"close", "back", "rounded", "vowel"},
	'ɪ': {"near-close", "front", "unrounded", "vowel"},
	'ʏ': {"near-close", "front", "rounded", "vowel"},
	'ʊ': {"near-close", "back", "rounded", "vowel"},
	'e': {"close-mid", "front", "unrounded", "vowel"},
	'ø': {"close-mid", "front", "rounded", "vowel"},
	'ə': {"mid", "central", "unrounded", "vowel"},
	'o': {"close-mid", "back", "rounded", "vowel"},
	'ɛ': {"open-mid", "front", "unrounded", "vowel"},
	'œ': {"open-mid", "front", "rounded", "vowel"},
	'ʌ': {"open-mid", "back", "unrounded", "vowel"},
	'ɔ': {"open-mid", "back", "rounded", "vowel"},
	'æ': {"near-open", "front", "unrounded", "vowel"},
	'a': {"open", "front", "unrounded", "vowel"},
	'ɑ': {"open", "back", "unrounded", "vowel"},
	'ɒ': {"open", "back", "rounded", "vowel"},

	// plosives
	'p': {"voiceless", "bilabial", "plosive", "consonant"},
	'b': {"voiced", "bilabial", "plosive", "consonant"},
	't': {"voiceless", "alveolar", "plosive", "consonant"},
	'd': {"voiced", "alveolar", "plosive", "consonant"},
	'c': {"voiceless", "palatal", "plosive", "consonant"},
	'ɟ': {"voiced", "palatal", "plosive", "consonant"},
	'k': {"voiceless", "velar", "plosive", "consonant"},
	'g': {"voiced", "velar", "plosive", "consonant"},
	'ɡ': {"voiced", "velar", "plosive", "consonant"}, // U+0261, same as ASCII g
	'q': {"voiceless", "uvular", "plosive", "consonant"},
	'ɢ': {"voiced", "uvular", "plosive", "consonant"},
	'ʔ': {"voiceless", "glottal", "plosive", "consonant"},

	// nasals
	'm': {"voiced", "bilabial", "nasal", "consonant"},
	'n': {"voiced", "alveolar", "nasal", "consonant"},
	'ɲ': {"voiced", "palatal", "nasal", "consonant"},
	'ŋ': {"voiced", "velar", "nasal", "consonant"},

	// trills and taps
	'r': {"voiced", "alveolar", "trill", "consonant"},
	'ʀ': {"voiced", "uvular", "trill", "consonant"},
	'ɾ': {"voiced", "alveolar", "tap", "consonant"},

	// fricatives
	'ɸ': {"voiceless", "bilabial", "fricative", "consonant"},
	'β': {"voiced", "bilabial", "fricative", "consonant"},
	'f': {"voiceless", "labiodental", "fricative", "consonant"},
	'v': {"voiced", "labiodental", "fricative", "consonant"},
	'θ': {"voiceless", "dental", "fricative", "consonant"},
	'ð': {"voiced", "dental", "fricative", "consonant"},
	's': {"voiceless", "alveolar", "sibilant", "fricative", "consonant"},
	'z': {"voiced", "alveolar", "sibilant", "fricative", "consonant"},
	'ʃ': {"voiceless", "postalveolar", "sibilant", "fricative", "consonant"},
	'ʒ': {"voiced", "postalveolar", "sibilant", "fricative", "consonant"},
	'ç': {"voiceless", "palatal", "fricative", "consonant"},
	'x': {"voiceless", "velar", "fricative", "consonant"},
	'ɣ': {"voiced", "velar", "fricative", "consonant"},
	'χ': {"voiceless", "uvular", "fricative", "consonant"},
	'ʁ': {"voiced", "uvular", "fricative", "consonant"},
	'h': {"voiceless", "glottal", "fricative", "consonant"},
	'ɦ': {"voiced", "glottal", "fricative", "consonant"},

	// approximants
	'j': {"voiced", "palatal", "approximant", "consonant"},
	'w': {"voiced", "labio-velar", "approximant", "consonant"},
	'l': {"voiced", "alveolar", "lateral", "approximant", "consonant"},
	'ʎ': {"voiced", "palatal", "lateral", "approximant", "consonant"},

	// diacritics and modifier letters
	'ʰ':      {"aspirated", "diacritic"},
	'ʷ':      {"labialized", "diacritic"},
	'ʲ':      {"palatalized", "diacritic"},
	'ˠ':      {"velarized", "diacritic"},
	'ʼ':      {"ejective", "diacritic"},
	'ː':      {"long", "diacritic"},
	'̃': {"nasalized", "diacritic"},   // combining tilde
	'̥': {"voiceless", "diacritic"},   // combining ring below
	'̬': {"voiced", "diacritic"},      // combining caron below
	'̪': {"dental", "diacritic"},      // combining bridge below
	'̩': {"syllabic", "diacritic"},    // combining vertical line below
	'̞': {"lowered", "diacritic"},     // combining down tack below
	'̝': {"raised", "diacritic"},      // combining up tack below
}
