package geom

func IsInTriangle(p, a, b, c *Vector3) bool {
	ab, bc, ca := b.Sub(a), c.Sub(b), a.Sub(c)
	c1, c2, c3 := ab.Cross(p.Sub(a)), bc.Cross(p.Sub(b)), ca.Cross(p.Sub(c))
	return c1.Dot(c2) > 0 && c2.Dot(c3) > 0 && c3.Dot(c1) > 0
}

// TriangulatePolygon splits a polygon given as indices into vertices using
// ear clipping. The returned triangles keep the polygon winding.
func TriangulatePolygon(vertices []*Vector3, poly []int) [][3]int {
	var dst [][3]int
	if len(poly) < 3 {
		return dst
	}
	if len(poly) == 3 {
		return append(dst, [3]int{poly[0], poly[1], poly[2]})
	}
	n := &Vector3{}
	for i := range poly {
		v0 := vertices[poly[(i+len(poly)-1)%len(poly)]]
		v1 := vertices[poly[i]]
		v2 := vertices[poly[(i+1)%len(poly)]]
		n = n.Add(v2.Sub(v1).Cross(v0.Sub(v1)))
	}
	n = n.Normalize()

	ii := append([]int{}, poly...)
	for len(ii) >= 3 {
		count := len(ii)
		clipped := false
		for i := 0; i < count; i++ {
			i0, i1, i2 := ii[(i+count-1)%count], ii[i], ii[(i+1)%count]
			v0, v1, v2 := vertices[i0], vertices[i1], vertices[i2]
			if v2.Sub(v1).Cross(v0.Sub(v1)).Dot(n) < 0 {
				continue
			}
			ear := true
			for _, j := range ii {
				if j != i0 && j != i1 && j != i2 && IsInTriangle(vertices[j], v0, v1, v2) {
					ear = false
					break
				}
			}
			if ear {
				dst = append(dst, [3]int{i0, i1, i2})
				ii = append(ii[:i:i], ii[i+1:]...)
				clipped = true
				break
			}
		}
		if !clipped {
			// self-intersecting polygon: fall back to a fan
			for i := 1; i < len(ii)-1; i++ {
				dst = append(dst, [3]int{ii[0], ii[i], ii[i+1]})
			}
			break
		}
	}
	return dst
}
