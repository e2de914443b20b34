package av

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
)

// Rational is an exact fraction Num/Den.
type Rational struct {
	Num int
	Den int
}

// R is shorthand for Rational{num, den}.
func R(num, den int) Rational {
	return Rational{Num: num, Den: den}
}

// Float64 returns the value as a float. A zero denominator yields NaN or Inf.
func (r Rational) Float64() float64 {
	return float64(r.Num) / float64(r.Den)
}

// Inv returns Den/Num.
func (r Rational) Inv() Rational {
	return Rational{Num: r.Den, Den: r.Num}
}

// Valid reports whether both terms are positive.
func (r Rational) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Reduce returns num/den reduced to lowest terms with both terms bounded by
// limit, using the best continued-fraction approximation when the exact value
// does not fit. The second result is false when the value was approximated.
func Reduce(num, den, limit int64) (Rational, bool) {
	a0 := [2]int64{0, 1}
	a1 := [2]int64{1, 0}
	sign := (num < 0) != (den < 0)

	num, den = abs64(num), abs64(den)
	if g := gcd(num, den); g != 0 {
		num /= g
		den /= g
	}
	if num <= limit && den <= limit {
		a1 = [2]int64{num, den}
		den = 0
	}

	for den != 0 {
		x := num / den
		nextDen := num - den*x
		a2n, okn := mulAdd(x, a1[0], a0[0], limit)
		a2d, okd := mulAdd(x, a1[1], a0[1], limit)

		if !okn || !okd {
			if a1[0] != 0 {
				x = (limit - a0[0]) / a1[0]
			}
			if a1[1] != 0 {
				x = min(x, (limit-a0[1])/a1[1])
			}
			if mulGreater(den, 2*x*a1[1]+a0[1], num, a1[1]) {
				a1 = [2]int64{x*a1[0] + a0[0], x*a1[1] + a0[1]}
			}
			break
		}

		a0 = a1
		a1 = [2]int64{a2n, a2d}
		num = den
		den = nextDen
	}

	n := a1[0]
	if sign {
		n = -n
	}
	return Rational{Num: int(n), Den: int(a1[1])}, den == 0
}

// D2Q converts d to a rational whose terms do not exceed maxDen.
// NaN maps to 0/0 and values beyond the int32 range map to ±1/0.
func D2Q(d float64, maxDen int) Rational {
	if math.IsNaN(d) {
		return Rational{}
	}
	if math.Abs(d) > math.MaxInt32+3 {
		if d < 0 {
			return Rational{Num: -1}
		}
		return Rational{Num: 1}
	}

	_, exp := math.Frexp(d)
	exp = max(exp-1, 0)
	den := int64(1) << (62 - exp)
	num := int64(math.Floor(d*float64(den) + 0.5))

	r, _ := Reduce(num, den, int64(maxDen))
	if (r.Num == 0 || r.Den == 0) && d != 0 && maxDen > 0 && maxDen < math.MaxInt32 {
		r, _ = Reduce(num, den, math.MaxInt32)
	}
	return r
}

// Rescale returns a*bq/cq rounded to nearest, ties away from zero.
func Rescale(a int64, bq, cq Rational) int64 {
	b := big.NewInt(int64(bq.Num))
	b.Mul(b, big.NewInt(int64(cq.Den)))
	c := big.NewInt(int64(bq.Den))
	c.Mul(c, big.NewInt(int64(cq.Num)))
	return rescaleRnd(big.NewInt(a), b, c)
}

func rescaleRnd(a, b, c *big.Int) int64 {
	if c.Sign() == 0 {
		return NoPTS
	}
	n := new(big.Int).Mul(a, b)
	q, m := new(big.Int).QuoRem(n, c, new(big.Int))

	m.Abs(m).Lsh(m, 1)
	if m.Cmp(new(big.Int).Abs(c)) >= 0 {
		if n.Sign()*c.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	if !q.IsInt64() {
		return NoPTS
	}
	return q.Int64()
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// mulAdd returns x*a+b and whether the result stays within limit.
func mulAdd(x, a, b, limit int64) (int64, bool) {
	hi, lo := bits.Mul64(uint64(x), uint64(a))
	if hi != 0 || lo > uint64(limit) {
		return 0, false
	}
	v := int64(lo) + b
	return v, v <= limit
}

// mulGreater reports a*b > c*d for non-negative operands without overflow.
func mulGreater(a, b, c, d int64) bool {
	hi1, lo1 := bits.Mul64(uint64(a), uint64(b))
	hi2, lo2 := bits.Mul64(uint64(c), uint64(d))
	if hi1 != hi2 {
		return hi1 > hi2
	}
	return lo1 > lo2
}
