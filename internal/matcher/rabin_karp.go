package matcher

const (
	// radixRK is the polynomial base, one slot per byte value.
	radixRK = 256
	// primeRK is the modulus of the rolling hash.
	primeRK = 9973
)

// RabinKarp compares a rolling hash of each text window with the pattern
// hash and confirms every hash hit byte by byte, so collisions only cost time.
type RabinKarp struct {
	pattern string
	hash    int
	// pow is radixRK^(len(pattern)-1) mod primeRK, the weight of the byte
	// leaving the window.
	pow int
}

func NewRabinKarp(pattern string) *RabinKarp {
	h, pow := hashRK(pattern)
	return &RabinKarp{
		pattern: pattern,
		hash:    h,
		pow:     pow,
	}
}

func (rk *RabinKarp) Kind() Kind {
	return KindRabinKarp
}

func (rk *RabinKarp) Pattern() string {
	return rk.pattern
}

func (rk *RabinKarp) String() string {
	return "RABIN-KARP"
}

func (rk *RabinKarp) Search(text string) []int {
	n := len(rk.pattern)
	if n == 0 || len(text) < n {
		return nil
	}

	var ret []int
	h, _ := hashRK(text[:n])
	for i := 0; ; i++ {
		if h == rk.hash && text[i:i+n] == rk.pattern {
			ret = append(ret, i)
		}
		if i+n == len(text) {
			break
		}
		h = (h - int(text[i])*rk.pow%primeRK + primeRK) % primeRK
		h = (h*radixRK + int(text[i+n])) % primeRK
	}
	return ret
}

// hashRK returns the hash of s and radixRK^(len(s)-1) mod primeRK.
func hashRK(s string) (int, int) {
	h, pow := 0, 1
	for i := 0; i < len(s); i++ {
		h = (h*radixRK + int(s[i])) % primeRK
		if i > 0 {
			pow = pow * radixRK % primeRK
		}
	}
	return h, pow
}
