package cloth

import "github.com/go-gl/mathgl/mgl64"

// normalEpsilon is the magnitude below which a face or vertex normal is
// treated as degenerate.
const normalEpsilon = 1e-3

// FaceNormal is the unit normal of triangle (a, b, c), or the zero vector
// when the triangle is degenerate.
func FaceNormal(a, b, c mgl64.Vec3) mgl64.Vec3 {
	return safeNormalize(b.Sub(a).Cross(c.Sub(a)))
}

// EstimateNormals returns one shading normal per particle: the re-normalized
// mean of the face normals of every triangle touching it.
func EstimateNormals(topo *Topology, pos []mgl64.Vec3) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, topo.Len())
	EstimateNormalsInto(topo, pos, out, make([]int, topo.Len()))
	return out
}

// EstimateNormalsInto is EstimateNormals with caller-owned buffers.
func EstimateNormalsInto(topo *Topology, pos, out []mgl64.Vec3, counts []int) {
	for i := range out {
		out[i] = mgl64.Vec3{}
		counts[i] = 0
	}

	accumulate := func(a, b, c int) {
		n := FaceNormal(pos[a], pos[b], pos[c])
		for _, v := range [3]int{a, b, c} {
			out[v] = out[v].Add(n)
			counts[v]++
		}
	}

	for i := 0; i < topo.Rows-1; i++ {
		for j := 0; j < topo.Cols-1; j++ {
			p00 := topo.Index(i, j)
			p10 := topo.Index(i+1, j)
			p11 := topo.Index(i+1, j+1)
			p01 := topo.Index(i, j+1)
			accumulate(p00, p10, p11)
			accumulate(p00, p11, p01)
		}
	}

	for i := range out {
		if counts[i] == 0 {
			continue
		}
		out[i] = safeNormalize(out[i].Mul(1 / float64(counts[i])))
	}
}

func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < normalEpsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}
