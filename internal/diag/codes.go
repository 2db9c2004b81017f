package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Лексические (нотация правил)
	LexInfo                Code = 1000
	LexUnknownChar         Code = 1001
	LexUnsupportedNotation Code = 1002

	// Структура правила
	SynInfo                    Code = 2000
	SynUnexpectedToken         Code = 2001
	SynMultipleArrows          Code = 2002
	SynMultipleSlashes         Code = 2003
	SynMissingPlaceholder      Code = 2004
	SynMultiplePlaceholders    Code = 2005
	SynPlaceholderOutsideEnv   Code = 2006
	SynUnclosedBracket         Code = 2007
	SynUnclosedBrace           Code = 2008
	SynUnclosedParen           Code = 2009
	SynUnexpectedClose         Code = 2010
	SynNestedGroup             Code = 2011
	SynEmptySet                Code = 2012
	SynEmptyClass              Code = 2013
	SynBadNegation             Code = 2014
	SynEmptyRule               Code = 2015
	SynEmptyAlternative        Code = 2016
	SynGroupInsideClass        Code = 2017
	SynDanglingSeparator       Code = 2018
	SynMissingArrow            Code = 2019
	SynEmptyGroup              Code = 2020

	// Развёртка и компиляция против каталога
	ExpInfo        Code = 3000
	ExpEmptyClass  Code = 3001
	ExpConflict    Code = 3002
	ExpAlignment   Code = 3003
	ExpLimit       Code = 3004
	ExpNoChanges   Code = 3005
	ExpEmptyWindow Code = 3006

	// Ошибки I/O
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	// Каталог и манифест языка
	CatInfo               Code = 5000
	CatDuplicateAllophone Code = 5001
	CatDuplicatePhoneme   Code = 5002
	CatEmpty              Code = 5003
	CatUnknownSymbol      Code = 5004
	CatPhonemeNotFound    Code = 5005
	CatManifestNoName     Code = 5006
	CatManifestNoPhonemes Code = 5007
	CatAbbrevConflict     Code = 5008
	CatAbbrevBadKey       Code = 5009
	CatManifestBadPath    Code = 5010

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var ( // краткие описания; подробности живут в сообщениях
	codeDescription = map[Code]string{
		UnknownCode: "Unknown error",

		LexInfo:                "Lexical information",
		LexUnknownChar:         "Unknown character",
		LexUnsupportedNotation: "Unsupported notation",

		SynInfo:                  "Rule structure information",
		SynUnexpectedToken:       "Unexpected token",
		SynMultipleArrows:        "More than one '->' in rule",
		SynMultipleSlashes:       "More than one '/' in rule",
		SynMissingPlaceholder:    "Environment lacks '_' placeholder",
		SynMultiplePlaceholders:  "More than one '_' in environment",
		SynPlaceholderOutsideEnv: "'_' placeholder outside environment",
		SynUnclosedBracket:       "Unclosed descriptor class",
		SynUnclosedBrace:         "Unclosed alternative set",
		SynUnclosedParen:         "Unclosed optional group",
		SynUnexpectedClose:       "Closing delimiter without opener",
		SynNestedGroup:           "Nested optional group",
		SynEmptySet:              "Empty alternative set",
		SynEmptyClass:            "Empty descriptor class",
		SynBadNegation:           "Invalid negation operand",
		SynEmptyRule:             "Empty rule",
		SynEmptyAlternative:      "Empty alternative in set",
		SynGroupInsideClass:      "Group not allowed inside class or set",
		SynDanglingSeparator:     "Dangling separator",
		SynMissingArrow:          "Rule has no '->'",
		SynEmptyGroup:            "Empty optional group",

		ExpInfo:        "Expansion information",
		ExpEmptyClass:  "Descriptor class matches no phones",
		ExpConflict:    "Conflicting replacements for same context",
		ExpAlignment:   "Replacement count does not match expansion",
		ExpLimit:       "Expansion exceeds configured limit",
		ExpNoChanges:   "Rule compiles to no changes",
		ExpEmptyWindow: "Rule matches an empty window",

		IOLoadFileError: "I/O load file error",
		IOCacheError:    "Compiled-rule cache error",

		CatInfo:               "Catalog information",
		CatDuplicateAllophone: "Duplicate allophone dropped",
		CatDuplicatePhoneme:   "Duplicate phoneme dropped",
		CatEmpty:              "Catalog has no phonemes",
		CatUnknownSymbol:      "Symbol not in descriptor table",
		CatPhonemeNotFound:    "Phoneme not found in catalog",
		CatManifestNoName:     "Manifest missing language name",
		CatManifestNoPhonemes: "Manifest defines no phonemes",
		CatAbbrevConflict:     "Abbreviation conflicts with built-in",
		CatAbbrevBadKey:       "Abbreviation key must be a single letter",
		CatManifestBadPath:    "Manifest references missing file",

		ObsInfo:    "Observability information",
		ObsTimings: "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("EXP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CAT%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
