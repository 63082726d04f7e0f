package domain

// Build constructs a candidate instance from a definition and a gameplay context.
//
// Build never fails loudly: any rule that disqualifies the candidate yields Invalid.
func Build(definition *Definition, ctx BuildContext) Instance {
	if definition == nil {
		return Invalid
	}

	data := &instanceData{definition: definition}

	hasBody := ctx.Body != nil && *ctx.Body != ""
	if hasBody {
		data.body = *ctx.Body
	}
	if definition.BodySpecific && !hasBody {
		return Invalid
	}

	isHome := hasBody && ctx.HomeBody != "" && data.body == ctx.HomeBody
	switch definition.HomeScope {
	case HomeScopeHomeOnly:
		if !isHome {
			return Invalid
		}
	case HomeScopeExcludeHome:
		if isHome {
			return Invalid
		}
	case HomeScopeAny:
	}

	if definition.HasTime() {
		data.time = ctx.UniversalTime
		if definition.ValueKind != ValueTotalAssignedCrew {
			if ctx.ExplicitContributor != nil {
				data.contributor = *ctx.ExplicitContributor
			} else if ctx.Vessel != nil {
				data.contributor = ctx.Vessel.Name
			}
		}
	}

	if ctx.ExplicitContributor != nil {
		data.contributorIDs = data.contributorIDs.Add(*ctx.ExplicitContributor)
	} else if ctx.Vessel != nil {
		data.contributorIDs = data.contributorIDs.Add(ctx.Vessel.ID)
	}

	if definition.HasValue() {
		data.value = ExtractValue(definition.ValueKind, ctx)
	}

	if definition.CrewedOnly && (ctx.Vessel == nil || ctx.Vessel.CrewCount <= 0) {
		return Invalid
	}

	return Instance{data: data}
}
