package types

import (
	"math"
	"testing"
)

func TestVec4Lerp(t *testing.T) {
	type spec struct {
		from, to Vec4
		t        float32
		exp      Vec4
	}
	specs := []spec{
		{XYZW(0, 0, 0, 0), XYZW(1, 2, 3, 4), 1, XYZW(1, 2, 3, 4)},
		{XYZW(1, 1, 1, 1), XYZW(3, 3, 3, 3), 0.5, XYZW(2, 2, 2, 2)},
		{XYZW(5, 5, 5, 5), XYZW(0, 0, 0, 0), 0, XYZW(5, 5, 5, 5)},
	}

	for index, s := range specs {
		out := s.from.Lerp(s.to, s.t)
		if out != s.exp {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, out)
		}
	}
}

func TestVec3Normalize(t *testing.T) {
	v := XYZ(3, 0, 4).Normalize()
	if math.Abs(float64(v.Len()-1)) > 1e-5 {
		t.Fatalf("expected unit length vector; got len %f", v.Len())
	}

	if zero := (Vec3{}).Normalize(); zero != (Vec3{}) {
		t.Fatalf("expected zero vector to stay zero; got %v", zero)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(XYZ(0, 1, 0), math.Pi/2)
	out := q.Rotate(XYZ(1, 0, 0))
	exp := XYZ(0, 0, -1)
	if out.Sub(exp).Len() > 1e-5 {
		t.Fatalf("expected %v; got %v", exp, out)
	}

	if n := q.Mul(q).Normalize().Len(); math.Abs(float64(n-1)) > 1e-5 {
		t.Fatalf("expected unit quaternion; got len %f", n)
	}
}
