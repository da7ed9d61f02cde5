package math

import (
	"math"
	"testing"
)

func testFrustum(reverse bool) Frustum {
	near, far := float32(1), float32(100)
	if reverse {
		near, far = far, near
	}
	view := LookAtLH(Vec3{}, Vec3Forward, Vec3Up)
	proj := PerspectiveLH(float32(math.Pi/2), 1, near, far)
	return FrustumFromViewProjection(proj.Mul(view))
}

func TestFrustumCheckCube(t *testing.T) {
	tests := []struct {
		name    string
		center  Vec3
		extents Vec3
		want    Intersection
	}{
		{"fully inside", Vec3{0, 0, 10}, Vec3{1, 1, 1}, Inside},
		{"behind camera", Vec3{0, 0, -10}, Vec3{1, 1, 1}, Outside},
		{"past far plane", Vec3{0, 0, 200}, Vec3{1, 1, 1}, Outside},
		{"off to the left", Vec3{-50, 0, 10}, Vec3{1, 1, 1}, Outside},
		{"straddles near plane", Vec3{0, 0, 1}, Vec3{0.5, 0.5, 0.5}, Intersects},
		{"straddles right plane", Vec3{10, 0, 10}, Vec3{1, 1, 1}, Intersects},
	}

	for _, reverse := range []bool{false, true} {
		f := testFrustum(reverse)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := f.CheckCube(tt.center, tt.extents); got != tt.want {
					t.Errorf("reverse=%v CheckCube = %v, want %v", reverse, got, tt.want)
				}
			})
		}
	}
}

func TestFrustumCheckSphere(t *testing.T) {
	f := testFrustum(false)

	if got := f.CheckSphere(Vec3{0, 0, 50}, 1); got != Inside {
		t.Errorf("CheckSphere inside = %v", got)
	}
	if got := f.CheckSphere(Vec3{0, 0, -5}, 1); got != Outside {
		t.Errorf("CheckSphere behind = %v", got)
	}
}

func TestFrustumContainsPoint(t *testing.T) {
	f := testFrustum(false)

	if !f.ContainsPoint(Vec3{0, 0, 5}) {
		t.Error("point on the view axis should be inside")
	}
	if f.ContainsPoint(Vec3{0, 10, 5}) {
		t.Error("point above a 90 degree frustum should be outside")
	}
}
