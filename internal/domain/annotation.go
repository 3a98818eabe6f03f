package domain

// PointOfInterest is a named location drawn on every frame.
type PointOfInterest struct {
	Name string
	Lon  float64
	Lat  float64
}

// Catalog is an immutable set of points of interest. The zero value is an empty catalog.
type Catalog struct {
	points []PointOfInterest
}

// NewCatalog copies points into a new catalog, preserving their order.
func NewCatalog(points []PointOfInterest) Catalog {
	cp := make([]PointOfInterest, len(points))
	copy(cp, points)
	return Catalog{points: cp}
}

// Points returns a copy of the catalog entries.
func (c Catalog) Points() []PointOfInterest {
	cp := make([]PointOfInterest, len(c.points))
	copy(cp, c.points)
	return cp
}

// Len returns the number of points.
func (c Catalog) Len() int {
	return len(c.points)
}

// Within returns the points that fall inside b.
func (c Catalog) Within(b Bounds) Catalog {
	var in []PointOfInterest
	for _, p := range c.points {
		if b.Contains(p.Lon, p.Lat) {
			in = append(in, p)
		}
	}
	return Catalog{points: in}
}

// SalentoCatalog returns the coastal spots of the Salento peninsula (Apulia, Italy)
// annotated on the Mediterranean bulletins.
func SalentoCatalog() Catalog {
	return NewCatalog([]PointOfInterest{
		{Name: "Brindisi", Lon: 17.954848, Lat: 40.646719},
		{Name: "Campo di Mare", Lon: 18.074448, Lat: 40.539126},
		{Name: "Casalabate", Lon: 18.115720, Lat: 40.505809},
		{Name: "T. Rinalda", Lon: 18.163854, Lat: 40.480910},
		{Name: "T. Chianca", Lon: 18.201003, Lat: 40.468293},
		{Name: "Frigole", Lon: 18.251358, Lat: 40.433832},
		{Name: "San Cataldo", Lon: 18.306412, Lat: 40.388705},
		{Name: "San Foca", Lon: 18.400512, Lat: 40.304468},
		{Name: "Roca", Lon: 18.417373, Lat: 40.286052},
		{Name: "Otranto", Lon: 18.488300, Lat: 40.147917},
		{Name: "Porto Miggiano", Lon: 18.445492, Lat: 40.032193},
		{Name: "Andrano", Lon: 18.407593, Lat: 39.971911},
		{Name: "Tricase Porto", Lon: 18.393600, Lat: 39.919967},
		{Name: "S. M. Leuca", Lon: 18.357272, Lat: 39.795486},
		{Name: "Gallipoli", Lon: 17.984831, Lat: 40.058992},
		{Name: "Santa Caterina", Lon: 17.979134, Lat: 40.141379},
		{Name: "S. M. al Bagno", Lon: 17.995806, Lat: 40.127617},
		{Name: "T. Inserraglio", Lon: 17.925671, Lat: 40.186565},
		{Name: "Porto Cesareo", Lon: 17.885052, Lat: 40.264565},
		{Name: "Campomarino", Lon: 17.563060, Lat: 40.297644},
		{Name: "S. P. in Bevagna", Lon: 17.678444, Lat: 40.304075},
	})
}
