package extract

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// packedPattern matches Dean Edwards' packer output:
// eval(function(p,a,c,k,e,d){...}('payload',radix,count,'sym|tab'.split('|'),0,{}))
var packedPattern = regexp.MustCompile(`(?s)eval\(function\(p,a,c,k,e,[rd]\).*?\}\('(.*?)',\s*(\d+),\s*(\d+),\s*'(.*?)'\.split\('\|'\)`)

var wordPattern = regexp.MustCompile(`\b\w+\b`)

const base62 = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// UnpackAll returns the unpacked source of every packed script in html.
// Scripts that fail to unpack are skipped.
func UnpackAll(html string) []string {
	var out []string
	for _, m := range packedPattern.FindAllStringSubmatch(html, -1) {
		src, err := unpack(m[1], m[2], m[3], m[4])
		if err != nil {
			continue
		}
		out = append(out, src)
	}
	return out
}

func unpack(payload, radixStr, countStr, symtab string) (string, error) {
	radix, err := strconv.Atoi(radixStr)
	if err != nil || radix < 2 || radix > 62 {
		return "", fmt.Errorf("unsupported radix %q", radixStr)
	}
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return "", fmt.Errorf("bad symbol count %q", countStr)
	}
	symbols := strings.Split(symtab, "|")
	if len(symbols) != count {
		return "", fmt.Errorf("symbol table has %d entries, want %d", len(symbols), count)
	}

	payload = strings.NewReplacer(`\\`, `\`, `\'`, `'`).Replace(payload)

	return wordPattern.ReplaceAllStringFunc(payload, func(word string) string {
		idx, ok := unbase(word, radix)
		if !ok || idx < 0 || idx >= len(symbols) || symbols[idx] == "" {
			return word
		}
		return symbols[idx]
	}), nil
}

func unbase(word string, radix int) (int, bool) {
	if radix <= 36 {
		n, err := strconv.ParseInt(word, radix, 64)
		if err != nil || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	}
	alphabet := base62[:radix]
	n := 0
	for _, r := range word {
		d := strings.IndexRune(alphabet, r)
		if d < 0 || n > (math.MaxInt-d)/radix {
			return 0, false
		}
		n = n*radix + d
	}
	return n, true
}
