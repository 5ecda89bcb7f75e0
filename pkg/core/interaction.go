package core

// TransportMode tells scattering code which quantity a path carries
type TransportMode int

const (
	// Radiance is carried by paths started at the camera
	Radiance TransportMode = iota
	// Importance is carried by paths started at a light
	Importance
)

func (m TransportMode) String() string {
	if m == Importance {
		return "importance"
	}
	return "radiance"
}

// Shading holds the possibly perturbed shading geometry of an interaction
type Shading struct {
	N          Vec3
	Dpdu, Dpdv Vec3
	Dndu, Dndv Vec3
}

// SurfaceInteraction describes a ray-surface hit as handed to materials.
// It is produced by the scene and read by the scattering core.
type SurfaceInteraction struct {
	P  Vec3    // Point of intersection
	T  float64 // Parameter t along the ray
	N  Vec3    // Geometric normal
	Wo Vec3    // Direction towards the ray origin
	UV Vec2

	Dpdu, Dpdv Vec3
	Dndu, Dndv Vec3

	// Screen-space derivatives; zero when the caller has no ray differentials
	Dpdx, Dpdy             Vec3
	Dudx, Dvdx, Dudy, Dvdy float64

	Shading Shading

	// Material is the owner of the primitive that was hit. It is only ever
	// compared by identity.
	Material any
}

// NewSurfaceInteraction builds an interaction whose shading geometry equals
// the true geometry. The geometric normal follows dpdu x dpdv.
func NewSurfaceInteraction(p Vec3, uv Vec2, wo, dpdu, dpdv, dndu, dndv Vec3, t float64) *SurfaceInteraction {
	n := dpdu.Cross(dpdv).Normalize()
	return &SurfaceInteraction{
		P:    p,
		T:    t,
		N:    n,
		Wo:   wo.Normalize(),
		UV:   uv,
		Dpdu: dpdu,
		Dpdv: dpdv,
		Dndu: dndu,
		Dndv: dndv,
		Shading: Shading{
			N:    n,
			Dpdu: dpdu,
			Dpdv: dpdv,
			Dndu: dndu,
			Dndv: dndv,
		},
	}
}

// SetShadingGeometry replaces the shading frame. The shading normal follows
// dpdu x dpdv and the geometric normal is flipped into its hemisphere when
// orientationIsAuthoritative is set; otherwise the shading normal is flipped
// to agree with the geometric one.
func (si *SurfaceInteraction) SetShadingGeometry(dpdus, dpdvs, dndus, dndvs Vec3, orientationIsAuthoritative bool) {
	ns := dpdus.Cross(dpdvs).Normalize()
	if orientationIsAuthoritative {
		si.N = si.N.FaceForward(ns)
	} else {
		ns = ns.FaceForward(si.N)
	}
	si.Shading = Shading{N: ns, Dpdu: dpdus, Dpdv: dpdvs, Dndu: dndus, Dndv: dndvs}
}

// SpawnRayTo returns a segment from this interaction towards p
func (si *SurfaceInteraction) SpawnRayTo(p Vec3) Ray {
	origin := si.offsetOrigin(p.Subtract(si.P))
	return NewSegment(origin, p)
}

// offsetOrigin nudges the origin off the surface on the side of w
func (si *SurfaceInteraction) offsetOrigin(w Vec3) Vec3 {
	const eps = 1e-6
	offset := si.N.Multiply(eps)
	if w.Dot(si.N) < 0 {
		offset = offset.Negate()
	}
	return si.P.Add(offset)
}
