package forms

import "sort"

// OptionCatalog decouples stored answers from the UI language: answer records
// only ever hold stable option identifiers, and the catalog maps an identifier
// to one display string per locale. Switching locale is a pure lookup and never
// touches stored answers. English is the canonical locale used when persisting
// to the feedback sink.

const (
	LocaleEnglish  = "english"
	LocaleHindi    = "hindi"
	LocaleHinglish = "hinglish"

	CanonicalLocale = LocaleEnglish
)

// Locales lists every supported UI language.
var Locales = []string{LocaleEnglish, LocaleHindi, LocaleHinglish}

// Option is one selectable choice: a stable identifier plus a display string
// per locale. Identifiers never change across locales or app versions.
type Option struct {
	ID   string
	Text map[string]string
}

type category struct {
	order []string
	byID  map[string]Option
}

// Catalog is the locale-agnostic registry of option categories.
type Catalog struct {
	categories map[string]*category
}

// NewCatalog builds the full owner + seeker option registry.
func NewCatalog() *Catalog {
	c := &Catalog{categories: map[string]*category{}}
	for name, opts := range catalogData {
		cat := &category{byID: map[string]Option{}}
		for _, o := range opts {
			cat.order = append(cat.order, o.ID)
			cat.byID[o.ID] = o
		}
		c.categories[name] = cat
	}
	return c
}

// IDs returns the identifiers of a category in declaration order. Unknown
// categories yield nil.
func (c *Catalog) IDs(categoryName string) []string {
	cat, ok := c.categories[categoryName]
	if !ok {
		return nil
	}
	out := make([]string, len(cat.order))
	copy(out, cat.order)
	return out
}

// Categories returns every registered category name, sorted.
func (c *Catalog) Categories() []string {
	names := make([]string, 0, len(c.categories))
	for name := range c.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether id is registered under the category.
func (c *Catalog) Has(categoryName, id string) bool {
	cat, ok := c.categories[categoryName]
	if !ok {
		return false
	}
	_, ok = cat.byID[id]
	return ok
}

// Display resolves an identifier to its display string for locale. Unknown
// category, identifier or locale degrades to the raw identifier (with English
// as the intermediate fallback); it never errors.
func (c *Catalog) Display(categoryName, id, locale string) string {
	cat, ok := c.categories[categoryName]
	if !ok {
		return id
	}
	opt, ok := cat.byID[id]
	if !ok {
		return id
	}
	if text, ok := opt.Text[locale]; ok && text != "" {
		return text
	}
	if text, ok := opt.Text[CanonicalLocale]; ok && text != "" {
		return text
	}
	return id
}

// CanonicalText resolves via the canonical locale; used only at submission
// time so the sink always receives language-stable values.
func (c *Catalog) CanonicalText(categoryName, id string) string {
	return c.Display(categoryName, id, CanonicalLocale)
}

func opt(id, en, hi, hing string) Option {
	return Option{ID: id, Text: map[string]string{
		LocaleEnglish:  en,
		LocaleHindi:    hi,
		LocaleHinglish: hing,
	}}
}

var catalogData = map[string][]Option{
	"city": {
		opt("MUMBAI", "Mumbai", "मुंबई", "Mumbai"),
		opt("DELHI", "Delhi", "दिल्ली", "Delhi"),
		opt("BANGALORE", "Bangalore", "बेंगलुरु", "Bangalore"),
		opt("PUNE", "Pune", "पुणे", "Pune"),
		opt("HYDERABAD", "Hyderabad", "हैदराबाद", "Hyderabad"),
		opt("CHENNAI", "Chennai", "चेन्नई", "Chennai"),
		opt("KOLKATA", "Kolkata", "कोलकाता", "Kolkata"),
		opt("OTHER", "Other", "अन्य", "Other"),
	},
	"propertyType": {
		opt("PG_HOSTEL", "PG/Hostel", "पीजी/हॉस्टल", "PG/Hostel"),
		opt("APARTMENT", "Apartment/Flat", "अपार्टमेंट/फ्लैट", "Apartment/Flat"),
		opt("INDEPENDENT_HOUSE", "Independent House", "स्वतंत्र मकान", "Independent House"),
		opt("COMMERCIAL", "Commercial Property", "व्यावसायिक संपत्ति", "Commercial Property"),
		opt("OTHER", "Other", "अन्य", "Other"),
	},
	"propertyCount": {
		opt("1_PROPERTY", "1 Property", "1 संपत्ति", "1 Property"),
		opt("2_5_PROPERTIES", "2-5 Properties", "2-5 संपत्तियां", "2-5 Properties"),
		opt("6_10_PROPERTIES", "6-10 Properties", "6-10 संपत्तियां", "6-10 Properties"),
		opt("MORE_THAN_10", "More than 10", "10 से अधिक", "More than 10"),
	},
	"marketingSpend": {
		opt("UNDER_5K", "Under ₹5,000/month", "₹5,000/महीना से कम", "Under ₹5,000/month"),
		opt("5K_15K", "₹5,000 - ₹15,000/month", "₹5,000 - ₹15,000/महीना", "₹5,000 - ₹15,000/month"),
		opt("15K_30K", "₹15,000 - ₹30,000/month", "₹15,000 - ₹30,000/महीना", "₹15,000 - ₹30,000/month"),
		opt("ABOVE_30K", "Above ₹30,000/month", "₹30,000/महीना से ऊपर", "Above ₹30,000/month"),
	},
	"biggestChallenge": {
		opt("FINDING_TENANTS", "🔍 Finding reliable tenants", "🔍 भरोसेमंद किरायेदार ढूंढना", "🔍 Reliable tenants dhundna"),
		opt("RENT_COLLECTION", "💰 Rent collection delays", "💰 किराया वसूली में देरी", "💰 Rent collection mein delay"),
		opt("TIME_CONSUMING", "⏰ Time-consuming property management", "⏰ संपत्ति प्रबंधन में बहुत समय", "⏰ Property management mein bahut time"),
		opt("MAINTENANCE_ISSUES", "🤝 Dealing with maintenance issues", "🤝 रखरखाव की समस्याएं", "🤝 Maintenance issues handle karna"),
		opt("LACK_ANALYTICS", "📊 Lack of proper analytics/reports", "📊 उचित एनालिटिक्स/रिपोर्ट्स का अभाव", "📊 Proper analytics/reports ka lack"),
		opt("OUTDATED_SYSTEMS", "💻 Using outdated/manual systems", "💻 पुराने/मैन्युअल सिस्टम का उपयोग", "💻 Outdated/manual systems use karna"),
		opt("POOR_COMMUNICATION", "📞 Poor communication with tenants", "📞 किरायेदारों से खराब संवाद", "📞 Tenants ke sath poor communication"),
		opt("MARKETING_CHALLENGES", "🏠 Property marketing challenges", "🏠 संपत्ति मार्केटिंग चुनौतियां", "🏠 Property marketing challenges"),
		opt("OTHER", "📝 Other", "📝 अन्य", "📝 Other"),
	},
	"switchReasons": {
		opt("BETTER_COLLECTION", "💰 Better rent collection rates", "💰 बेहतर किराया वसूली दरें", "💰 Better rent collection rates"),
		opt("SAVE_TIME", "⏱️ Save 5+ hours per week", "⏱️ प्रति सप्ताह 5+ घंटे बचाएं", "⏱️ Per week 5+ ghante bachayenge"),
		opt("QUALITY_TENANTS", "🎯 Find quality tenants faster", "🎯 गुणवत्तापूर्ण किरायेदार तेज़ी से खोजें", "🎯 Quality tenants jaldi dhundenge"),
		opt("MOBILE_EXPERIENCE", "📱 Mobile-first experience", "📱 मोबाइल-फर्स्ट अनुभव", "📱 Mobile-first experience"),
		opt("REAL_ANALYTICS", "📊 Real-time analytics & insights", "📊 रीयल-टाइम एनालिटिक्स और इनसाइट्स", "📊 Real-time analytics aur insights"),
		opt("AUTOMATION", "🤖 Automated processes", "🤖 स्वचालित प्रक्रियाएं", "🤖 Automated processes"),
		opt("REDUCE_COSTS", "💸 Reduce operational costs", "💸 परिचालन लागत कम करें", "💸 Operational costs kam karenge"),
		opt("SECURITY_COMPLIANCE", "🔒 Better security & compliance", "🔒 बेहतर सुरक्षा और अनुपालन", "🔒 Better security aur compliance"),
		opt("OTHER", "📝 Other", "📝 अन्य", "📝 Other"),
	},
	"topFeatures": {
		opt("PROPERTY_LISTING", "🏠 Advanced Property Listing", "🏠 उन्नत संपत्ति लिस्टिंग", "🏠 Advanced Property Listing"),
		opt("TENANT_SCREENING", "👥 Tenant Screening & Verification", "👥 किरायेदार स्क्रीनिंग और सत्यापन", "👥 Tenant Screening & Verification"),
		opt("AUTO_RENT_COLLECTION", "💳 Automated Rent Collection", "💳 स्वचालित किराया वसूली", "💳 Automated Rent Collection"),
		opt("MAINTENANCE_MGMT", "🔧 Maintenance Management", "🔧 रखरखाव प्रबंधन", "🔧 Maintenance Management"),
		opt("FINANCIAL_REPORTS", "📊 Financial Reports & Analytics", "📊 वित्तीय रिपोर्ट्स और एनालिटिक्स", "📊 Financial Reports & Analytics"),
		opt("MOBILE_APP", "📱 Mobile App for Owners", "📱 मालिकों के लिए मोबाइल ऐप", "📱 Owners ke liye Mobile App"),
		opt("COMMUNICATION", "💬 In-app Communication", "💬 इन-ऐप कम्युनिकेशन", "💬 In-app Communication"),
		opt("LEASE_MANAGEMENT", "📄 Digital Lease Management", "📄 डिजिटल लीज प्रबंधन", "📄 Digital Lease Management"),
		opt("SMART_NOTIFICATIONS", "🔔 Smart Notifications", "🔔 स्मार्ट नोटिफिकेशन", "🔔 Smart Notifications"),
		opt("MARKETING_LEADS", "🎯 Marketing & Lead Generation", "🎯 मार्केटिंग और लीड जेनरेशन", "🎯 Marketing & Lead Generation"),
		opt("OTHER", "📝 Other", "📝 अन्य", "📝 Other"),
	},
	"successMetrics": {
		opt("WILLING_TO_PAY_YES", "💳 Yes, I would pay for a comprehensive platform", "💳 हाँ, मैं एक व्यापक प्लेटफॉर्म के लिए भुगतान करूंगा", "💳 Haan, main comprehensive platform ke liye payment karunga"),
		opt("WILLING_TO_PAY_NO", "💸 No, I prefer free solutions only", "💸 नहीं, मैं केवल मुफ्त समाधान पसंद करता हूं", "💸 Nahi, main sirf free solutions prefer karta hun"),
		opt("WILLING_TO_PAY_MAYBE", "🤔 Maybe, depends on the ROI and features", "🤔 हो सकता है, ROI और सुविधाओं पर निर्भर करता है", "🤔 Ho sakta hai, ROI aur features par depend karta hai"),
		opt("URGENCY_IMMEDIATE", "⏰ Immediate (within 1 month)", "⏰ तत्काल (1 महीने में)", "⏰ Immediate (1 month me)"),
		opt("URGENCY_PLANNING", "📅 Planning (2-6 months)", "📅 योजना बना रहे हैं (2-6 महीने)", "📅 Planning kar rahe hain (2-6 months)"),
		opt("URGENCY_EXPLORING", "👀 Just exploring solutions", "👀 सिर्फ समाधान देख रहे हैं", "👀 Sirf solutions explore kar rahe hain"),
	},
	"referralSource": {
		opt("FRIEND_REFERRAL", "👥 Shared by a friend", "👥 दोस्त द्वारा शेयर किया गया", "👥 Friend ne share kiya"),
		opt("GROUP_REFERRAL", "👥 Found in a group/community", "👥 किसी ग्रुप/कम्युनिटी में मिला", "👥 Kisi group/community me mila"),
	},
	"currentSituation": {
		opt("LOOKING_ACTIVE", "Looking for PG actively", "सक्रिय रूप से पीजी की तलाश में", "Actively PG dhundh rahe hain"),
		opt("LOOKING_CASUAL", "Looking for PG but not urgently", "पीजी की तलाश है लेकिन जल्दी नहीं", "PG dhundh rahe hain lekin urgent nahi"),
		opt("NEED_SWITCH", "Need to switch current PG", "वर्तमान पीजी बदलना चाहते हैं", "Current PG change karna hai"),
		opt("HAPPY_CURRENT", "Happy with current PG", "वर्तमान पीजी से खुश हैं", "Current PG se khush hain"),
		opt("OTHER", "Other", "अन्य", "Other"),
	},
	"painPoints": {
		opt("HIGH_RENT", "High rent prices", "अधिक किराया", "Zyada rent"),
		opt("POOR_FACILITIES", "Poor facilities", "खराब सुविधाएं", "Kharab facilities"),
		opt("BAD_FOOD", "Bad food quality", "खराब खाना", "Kharab khana"),
		opt("SAFETY_CONCERNS", "Safety concerns", "सुरक्षा की चिंता", "Safety ki problem"),
		opt("LIMITED_OPTIONS", "Limited options available", "सीमित विकल्प", "Limited options"),
		opt("LOCATION_ISSUES", "Location problems", "स्थान की समस्या", "Location ki problem"),
		opt("OTHER", "Other", "अन्य", "Other"),
	},
	"features": {
		opt("MEAL_PLANS", "Flexible meal plans", "लचीली भोजन योजना", "Flexible meal plans"),
		opt("HOUSEKEEPING", "Daily housekeeping", "दैनिक सफाई", "Daily safai"),
		opt("LAUNDRY", "Laundry service", "कपड़े धोने की सेवा", "Laundry service"),
		opt("WIFI", "High-speed WiFi", "तेज़ इंटरनेट", "Fast internet"),
		opt("SECURITY", "24/7 Security", "24/7 सुरक्षा", "24/7 security"),
		opt("AC_ROOMS", "AC rooms", "एसी कमरे", "AC rooms"),
		opt("PARKING", "Parking facility", "पार्किंग सुविधा", "Parking facility"),
		opt("COMMON_AREAS", "Common areas", "सामान्य क्षेत्र", "Common areas"),
		opt("OTHER", "Other", "अन्य", "Other"),
	},
}
