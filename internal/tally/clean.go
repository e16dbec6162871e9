package tally

import "strconv"

// Clean repairs the malformed XML the gateway is known to emit: bare
// ampersands are escaped, and control characters, raw or as numeric
// character references, are dropped. Well-formed entities are kept.
func Clean(raw []byte) []byte {
	out := make([]byte, 0, len(raw)+len(raw)/32)
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		switch {
		case b == '&':
			n, ok := entityLen(raw[i:])
			switch {
			case !ok:
				out = append(out, "&amp;"...)
			case isControlRef(raw[i : i+n]):
				i += n - 1
			default:
				out = append(out, raw[i:i+n]...)
				i += n - 1
			}
		case isControl(b):
		default:
			out = append(out, b)
		}
	}
	return out
}

func isControl(b byte) bool {
	return b < 0x20 && b != '\t' && b != '\n' && b != '\r' || b == 0x7f
}

// entityLen reports the length of a well-formed entity or character
// reference at the start of s, e.g. "&amp;" or "&#38;".
func entityLen(s []byte) (int, bool) {
	const maxEntity = 12
	for j := 1; j < len(s) && j <= maxEntity; j++ {
		c := s[j]
		switch {
		case c == ';':
			return j + 1, j > 1 && validEntityBody(s[1:j])
		case c == '#' && j == 1:
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		default:
			return 0, false
		}
	}
	return 0, false
}

func validEntityBody(body []byte) bool {
	if body[0] != '#' {
		for _, c := range body {
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
				return false
			}
		}
		return true
	}
	_, ok := charRef(body)
	return ok
}

// charRef parses the "#NN" or "#xHH" body of a character reference.
func charRef(body []byte) (int64, bool) {
	if len(body) < 2 || body[0] != '#' {
		return 0, false
	}
	digits, base := string(body[1:]), 10
	if digits[0] == 'x' || digits[0] == 'X' {
		digits, base = digits[1:], 16
	}
	n, err := strconv.ParseInt(digits, base, 32)
	return n, err == nil
}

func isControlRef(ref []byte) bool {
	n, ok := charRef(ref[1 : len(ref)-1])
	return ok && n >= 0 && n <= 0xff && isControl(byte(n))
}
