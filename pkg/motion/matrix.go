package motion

// Matrix is a 4x4 transform in column-major order, applied to the composition
// in place of a scale mode. The identity matrix is the "unset" sentinel: a
// view whose matrix is identity scales by its declared [ScaleMode] instead,
// and the identity value is never pushed to the engine.
type Matrix [16]float64

// IdentityMatrix returns the identity transform.
func IdentityMatrix() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// IsIdentity reports whether m is the identity transform.
func (m Matrix) IsIdentity() bool {
	return m == IdentityMatrix()
}
