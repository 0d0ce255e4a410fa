package regvm_test

import (
	"fmt"
	"unicode/utf16"

	"github.com/coregx/regvm"
)

// ExampleCompile demonstrates basic pattern compilation and matching.
func ExampleCompile() {
	re, err := regvm.Compile(`\d+`)
	if err != nil {
		panic(err)
	}

	fmt.Println(re.Match([]byte("hello 123")))
	// Output: true
}

// ExampleRegex_FindIndex demonstrates finding match positions.
func ExampleRegex_FindIndex() {
	re := regvm.MustCompile(`\d+`)
	loc := re.FindIndex([]byte("age: 42"))
	fmt.Printf("Match at [%d:%d]\n", loc[0], loc[1])
	// Output: Match at [5:7]
}

// ExampleRegex_FindAllString demonstrates finding all matches.
func ExampleRegex_FindAllString() {
	re := regvm.MustCompile(`\d`)
	fmt.Println(re.FindAllString("a1b2c3", -1))
	// Output: [1 2 3]
}

// ExampleRegex_FindStringSubmatch shows a lookbehind: the dollar sign is
// required but not part of the match.
func ExampleRegex_FindStringSubmatch() {
	re := regvm.MustCompile(`(?<=\$)(\d+)`)
	fmt.Printf("%q\n", re.FindStringSubmatch("cost: $42"))
	// Output: ["42" "42"]
}

// ExampleRegex_FindStringSubmatchIndex shows that a group inside a
// quantifier only reports the last iteration.
func ExampleRegex_FindStringSubmatchIndex() {
	re := regvm.MustCompile(`(?:(a)|b)+`)
	fmt.Println(re.FindStringSubmatchIndex("ab"))
	// Output: [0 2 -1 -1]
}

// ExampleRegex_SubexpNames demonstrates named capture groups.
func ExampleRegex_SubexpNames() {
	re := regvm.MustCompile(`(?<year>\d{4})-(?<month>\d{2})`)
	fmt.Printf("%q\n", re.SubexpNames())
	fmt.Println(re.SubexpIndex("month"))
	// Output:
	// ["" "year" "month"]
	// 2
}

// ExampleRegex_FindUTF16Index matches UTF-16 input directly; offsets are
// code units.
func ExampleRegex_FindUTF16Index() {
	re := regvm.MustCompile(`x`)
	fmt.Println(re.FindUTF16Index(utf16.Encode([]rune("😀x"))))
	// Output: [2 3]
}

// ExampleLoad rebuilds an expression from its compiled programs.
func ExampleLoad() {
	pre, err := regvm.MustCompile(`a+`).Precompile()
	if err != nil {
		panic(err)
	}
	re, err := regvm.Load(pre)
	if err != nil {
		panic(err)
	}
	fmt.Println(re.FindString("baaa"))
	// Output: aaa
}
