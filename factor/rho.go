package factor

import "math/bits"

// small primes used for trial division before falling back to Pollard's rho.
var trialPrimes = []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}

func splitOff(n uint64, out map[uint64]int) {
	for _, p := range trialPrimes {
		for n%p == 0 {
			out[p]++
			n /= p
		}
	}
	if n == 1 {
		return
	}
	var rec func(m uint64)
	rec = func(m uint64) {
		if m == 1 {
			return
		}
		if isPrime64(m) {
			out[m]++
			return
		}
		d := rho(m)
		rec(d)
		rec(m / d)
	}
	rec(n)
}

func mulMod(x, y, m uint64) uint64 {
	hi, lo := bits.Mul64(x, y)
	_, rem := bits.Div64(hi, lo, m)
	return rem
}

func powMod(b, e, m uint64) uint64 {
	r := uint64(1) % m
	b %= m
	for e > 0 {
		if e&1 == 1 {
			r = mulMod(r, b, m)
		}
		b = mulMod(b, b, m)
		e >>= 1
	}
	return r
}

// isPrime64 is a deterministic Miller-Rabin test; the base set below is
// sufficient for all 64-bit integers.
func isPrime64(n uint64) bool {
	if n < 2 {
		return false
	}
	for _, p := range trialPrimes {
		if n == p {
			return true
		}
		if n%p == 0 {
			return false
		}
	}
	d := n - 1
	r := 0
	for d&1 == 0 {
		d >>= 1
		r++
	}
witness:
	for _, a := range trialPrimes {
		x := powMod(a, d, n)
		if x == 1 || x == n-1 {
			continue
		}
		for i := 0; i < r-1; i++ {
			x = mulMod(x, x, n)
			if x == n-1 {
				continue witness
			}
		}
		return false
	}
	return true
}

// rho finds a nontrivial factor of an odd composite n using Pollard's rho
// with Floyd cycle detection, retrying with a new increment on failure.
func rho(n uint64) uint64 {
	if n&1 == 0 {
		return 2
	}
	for c := uint64(1); ; c++ {
		f := func(x uint64) uint64 { return mulMod(x, x, n) + c }
		x, y, d := uint64(2), uint64(2), uint64(1)
		for d == 1 {
			x = f(x)
			y = f(f(y))
			diff := x - y
			if x < y {
				diff = y - x
			}
			if diff == 0 {
				break
			}
			d = gcd(diff, n)
		}
		if d != 1 && d != n {
			return d
		}
	}
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
