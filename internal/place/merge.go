package place

// properties returns the fields a candidate contributes on its own.
func (c Candidate) properties() Properties {
	p := Properties{
		PlaceNumber:  optional(c.ID),
		NameType:     optional(c.TypeCode),
		County:       optional(c.AdminUnit.County),
		Municipality: optional(c.AdminUnit.Municipality),
	}
	if len(c.Names) > 0 {
		p.PlaceName = optional(PreferredName(c.Names))
	}
	return p
}

// mergeProperties combines the partial results of a coordinate lookup. Any
// argument may be missing. Precedence per field:
//
//	county, municipality  admin unit lookup, then the place candidate
//	placeName             place candidate, then the elevation site name
//	placeNumber           place candidate, then the elevation site id
//	nameType              place candidate
func mergeProperties(admin *AdminUnit, candidate *Candidate, elev ElevationInfo) Properties {
	var fromAdmin, fromPlace Properties
	if admin != nil {
		fromAdmin.County = optional(admin.County)
		fromAdmin.Municipality = optional(admin.Municipality)
	}
	if candidate != nil {
		fromPlace = candidate.properties()
	}

	return Properties{
		PlaceNumber:  firstOf(fromPlace.PlaceNumber, elev.SiteID),
		NameType:     fromPlace.NameType,
		County:       firstOf(fromAdmin.County, fromPlace.County),
		Municipality: firstOf(fromAdmin.Municipality, fromPlace.Municipality),
		PlaceName:    firstOf(fromPlace.PlaceName, elev.SiteName),
	}
}

func firstOf(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
