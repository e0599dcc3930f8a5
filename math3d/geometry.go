package math3d

// Line3 is the infinite line through Start and End.
type Line3 struct {
	Start, End Vec3
}

// ClosestPoint returns the point on the infinite line closest to p.
// A degenerate line (Start == End) returns Start.
func (l Line3) ClosestPoint(p Vec3) Vec3 {
	dir := l.End.Sub(l.Start)
	lenSq := dir.LenSq()
	if lenSq == 0 {
		return l.Start
	}
	t := p.Sub(l.Start).Dot(dir) / lenSq
	return l.Start.Add(dir.Scale(t))
}

// Plane is the set of points x with Normal·x + Constant = 0.
// Normal is not required to be unit length; only the sign of
// DistanceToPoint is meaningful in that case.
type Plane struct {
	Normal   Vec3
	Constant float64
}

// PlaneFromNormalAndPoint builds the plane through p with the given normal.
func PlaneFromNormalAndPoint(normal, p Vec3) Plane {
	return Plane{Normal: normal, Constant: -p.Dot(normal)}
}

// DistanceToPoint returns the signed distance of p (scaled by |Normal|).
func (pl Plane) DistanceToPoint(p Vec3) float64 {
	return pl.Normal.Dot(p) + pl.Constant
}
