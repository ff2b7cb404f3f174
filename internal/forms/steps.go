package forms

import "fmt"

// Step validation composes the field validators over the fields relevant to a
// wizard step. Steps are 1-based; the owner wizard has 6, the seeker wizard 5.
// Validation mirrors the gate applied on every attempted step advance.

const (
	featuresMin = 4
	featuresMax = 8
)

// FieldDef describes how one answer field is validated and, for choice
// fields, which catalog category its identifiers live in.
type FieldDef struct {
	Kind     FieldKind
	Label    string
	Category string
	Multi    bool
}

var ownerFields = map[string]FieldDef{
	"name":              {Kind: KindName, Label: "Name"},
	"email":             {Kind: KindEmail, Label: "Email"},
	"phone":             {Kind: KindPhone, Label: "Phone"},
	"city":              {Kind: KindRequired, Label: "City", Category: "city"},
	"otherCity":         {Kind: KindRequired, Label: "City"},
	"propertyType":      {Kind: KindRequired, Label: "Property type", Category: "propertyType"},
	"propertyCount":     {Kind: KindRequired, Label: "Property count", Category: "propertyCount"},
	"biggestChallenge":  {Kind: KindRequired, Label: "Biggest challenge", Category: "biggestChallenge"},
	"otherChallenge":    {Kind: KindRequired, Label: "Other challenge"},
	"switchReasons":     {Kind: KindRequired, Label: "Switch reasons", Category: "switchReasons", Multi: true},
	"otherSwitchReason": {Kind: KindRequired, Label: "Other switch reason"},
	"topFeatures":       {Kind: KindRequired, Label: "Top features", Category: "topFeatures", Multi: true},
	"otherFeature":      {Kind: KindRequired, Label: "Other feature"},
	"readyToPay":        {Kind: KindRequired, Label: "Budget", Category: "successMetrics"},
	"marketingSpend":    {Kind: KindRequired, Label: "Marketing spend", Category: "marketingSpend"},
	"timing":            {Kind: KindRequired, Label: "Timeline", Category: "successMetrics"},
	"referralSource":    {Kind: KindRequired, Label: "Referral source", Category: "referralSource"},
	"friendName":        {Kind: KindRequired, Label: "Friend's name"},
	"groupName":         {Kind: KindRequired, Label: "Group name"},
}

var seekerFields = map[string]FieldDef{
	"name":                  {Kind: KindName, Label: "Name"},
	"email":                 {Kind: KindEmail, Label: "Email"},
	"phone":                 {Kind: KindPhone, Label: "Phone"},
	"city":                  {Kind: KindRequired, Label: "City", Category: "city"},
	"otherCity":             {Kind: KindRequired, Label: "City"},
	"occupation":            {Kind: KindRequired, Label: "Occupation"},
	"budget":                {Kind: KindRequired, Label: "Budget range"},
	"currentSituation":      {Kind: KindRequired, Label: "Current situation", Category: "currentSituation"},
	"otherCurrentSituation": {Kind: KindRequired, Label: "Current situation"},
	"mainProblems":          {Kind: KindRequired, Label: "Main problems", Category: "painPoints", Multi: true},
	"otherMainProblem":      {Kind: KindRequired, Label: "Other problem"},
	"importantFeatures":     {Kind: KindRequired, Label: "Important features", Category: "features", Multi: true},
	"otherFeature":          {Kind: KindRequired, Label: "Other feature"},
	"willingToPay":          {Kind: KindRequired, Label: "Payment option", Category: "successMetrics"},
	"urgency":               {Kind: KindRequired, Label: "Urgency", Category: "successMetrics"},
}

// FieldsFor returns the field definitions for a respondent type.
func FieldsFor(t RespondentType) map[string]FieldDef {
	if t == RespondentOwner {
		return ownerFields
	}
	return seekerFields
}

var ownerStepNames = []string{"profile", "challenges", "value", "features", "success", "referral"}
var seekerStepNames = []string{"profile", "current", "problems", "features", "success"}

// StepNames returns the 1-based wizard step names for a respondent type.
func StepNames(t RespondentType) []string {
	if t == RespondentOwner {
		return ownerStepNames
	}
	return seekerStepNames
}

// ValidateStep returns the per-field error map for one wizard step. An empty
// map means the step is complete and an advance is allowed.
func ValidateStep(s *Session, step int) map[string]string {
	if s.Type == RespondentOwner {
		return validateOwnerStep(s, step)
	}
	return validateSeekerStep(s, step)
}

// IsComplete reports whether the step passes validation with zero errors.
func IsComplete(s *Session, step int) bool {
	return len(ValidateStep(s, step)) == 0
}

func validateOwnerStep(s *Session, step int) map[string]string {
	errs := map[string]string{}
	a := s.Answers
	switch step {
	case 1:
		validateProfileIdentity(a, errs)
		if msg := ValidateRequired("City", a.Str("city")); msg != "" {
			errs["city"] = msg
		}
		if a.Str("city") == "OTHER" && ValidateRequired("", a.Str("otherCity")) != "" {
			errs["otherCity"] = "Please specify your city"
		}
		if a.Str("propertyType") == "" {
			errs["propertyType"] = "Property type is required"
		}
		if a.Str("propertyCount") == "" {
			errs["propertyCount"] = "Property count is required"
		}
	case 2:
		if a.Str("biggestChallenge") == "" {
			errs["biggestChallenge"] = "Please select your biggest challenge"
		}
		if a.Str("biggestChallenge") == "OTHER" && ValidateRequired("", a.Str("otherChallenge")) != "" {
			errs["otherChallenge"] = "Please specify your other challenge"
		}
	case 3:
		if len(a.Set("switchReasons")) == 0 {
			errs["switchReasons"] = "Please select at least one reason"
		}
		if a.HasOption("switchReasons", "OTHER") && ValidateRequired("", a.Str("otherSwitchReason")) != "" {
			errs["otherSwitchReason"] = "Please specify your other switch reason"
		}
	case 4:
		validateFeatureSet(a, "topFeatures", "features", errs)
		if a.HasOption("topFeatures", "OTHER") && ValidateRequired("", a.Str("otherFeature")) != "" {
			errs["otherFeature"] = "Please specify your other feature requirement"
		}
	case 5:
		if a.Str("readyToPay") == "" {
			errs["readyToPay"] = "Please select your budget"
		}
		if a.Str("marketingSpend") == "" {
			errs["marketingSpend"] = "Please select your current spend"
		}
		if a.Str("timing") == "" {
			errs["timing"] = "Please select your timeline"
		}
	case 6:
		switch a.Str("referralSource") {
		case "":
			errs["referralSource"] = "Please select how you found this form"
		case "FRIEND_REFERRAL":
			if ValidateRequired("", a.Str("friendName")) != "" {
				errs["friendName"] = "Please enter your friend's name"
			}
		case "GROUP_REFERRAL":
			if ValidateRequired("", a.Str("groupName")) != "" {
				errs["groupName"] = "Please enter the group/community name"
			}
		}
	}
	return errs
}

func validateSeekerStep(s *Session, step int) map[string]string {
	errs := map[string]string{}
	a := s.Answers
	switch step {
	case 1:
		validateProfileIdentity(a, errs)
		if msg := ValidateRequired("City", a.Str("city")); msg != "" {
			errs["city"] = msg
		}
		if a.Str("city") == "OTHER" && ValidateRequired("", a.Str("otherCity")) != "" {
			errs["otherCity"] = "Please specify your city"
		}
		if a.Str("occupation") == "" {
			errs["occupation"] = "Occupation is required"
		}
		if a.Str("budget") == "" {
			errs["budget"] = "Budget range is required"
		}
	case 2:
		if a.Str("currentSituation") == "" {
			errs["currentSituation"] = "Please select your current situation"
		}
		if a.Str("currentSituation") == "OTHER" && ValidateRequired("", a.Str("otherCurrentSituation")) != "" {
			errs["otherCurrentSituation"] = "Please specify your current housing situation"
		}
	case 3:
		if len(a.Set("mainProblems")) == 0 {
			errs["mainProblems"] = "Please select at least one problem"
		}
		if a.HasOption("mainProblems", "OTHER") && ValidateRequired("", a.Str("otherMainProblem")) != "" {
			errs["otherMainProblem"] = "Please specify your other problem"
		}
	case 4:
		validateFeatureSet(a, "importantFeatures", "features", errs)
		if a.HasOption("importantFeatures", "OTHER") && ValidateRequired("", a.Str("otherFeature")) != "" {
			errs["otherFeature"] = "Please specify your other feature requirement"
		}
	case 5:
		if a.Str("willingToPay") == "" {
			errs["willingToPay"] = "Please select payment option"
		}
		if a.Str("urgency") == "" {
			errs["urgency"] = "Please select urgency option"
		}
	}
	return errs
}

func validateProfileIdentity(a Answers, errs map[string]string) {
	if msg := ValidateName(a.Str("name")); msg != "" {
		errs["name"] = msg
	}
	if msg := ValidateEmail(a.Str("email"), true); msg != "" {
		errs["email"] = msg
	}
	if msg := ValidateMobile(a.Str("phone"), true); msg != "" {
		errs["phone"] = msg
	}
}

func validateFeatureSet(a Answers, field, noun string, errs map[string]string) {
	n := len(a.Set(field))
	switch {
	case n < featuresMin:
		errs[field] = fmt.Sprintf("Please select at least %d %s (%d more needed)", featuresMin, noun, featuresMin-n)
	case n > featuresMax:
		errs[field] = fmt.Sprintf("Please select maximum %d %s", featuresMax, noun)
	}
}
