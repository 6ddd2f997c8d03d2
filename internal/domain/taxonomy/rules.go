package taxonomy

// Rule maps a merchant-key substring pattern to a bucket. Rules are evaluated
// in list order and the first match wins, so the position of a rule in the
// table is part of its meaning. The table is a versioned data asset: changes
// to ordering are behavior changes and are pinned by tests.
type Rule struct {
	Pattern string // uppercase substring matched against the merchant key
	Bucket  Bucket
}

// DefaultRules returns the built-in ordered rule table.
//
// Ordering matters where patterns overlap: "UBER EATS" and "SWIGGY INSTAMART"
// must come before the shorter "UBER" and "SWIGGY" patterns, and delivery
// arms of grocery chains before the chains themselves.
func DefaultRules() []Rule {
	return []Rule{
		// Food delivery before ride share and dining.
		{"SWIGGY INSTAMART", BucketGroceries},
		{"SWIGGY", BucketFoodDelivery},
		{"ZOMATO", BucketFoodDelivery},
		{"UBER EATS", BucketFoodDelivery},
		{"DELIVEROO", BucketFoodDelivery},
		{"DOORDASH", BucketFoodDelivery},
		{"GLOVO", BucketFoodDelivery},
		{"BOLT FOOD", BucketFoodDelivery},

		// Groceries.
		{"BIGBASKET", BucketGroceries},
		{"BLINKIT", BucketGroceries},
		{"GROFERS", BucketGroceries},
		{"ZEPTO", BucketGroceries},
		{"DMART", BucketGroceries},
		{"RELIANCE FRESH", BucketGroceries},
		{"RELIANCE SMART", BucketGroceries},
		{"MORE SUPERMARKET", BucketGroceries},
		{"SPENCERS", BucketGroceries},
		{"NATURE BASKET", BucketGroceries},
		{"TESCO", BucketGroceries},
		{"LIDL", BucketGroceries},
		{"ALDI", BucketGroceries},
		{"CONTINENTE", BucketGroceries},
		{"PINGO DOCE", BucketGroceries},

		// Travel: flights, rail, hotels, ride share.
		{"MAKEMYTRIP", BucketTravel},
		{"CLEARTRIP", BucketTravel},
		{"GOIBIBO", BucketTravel},
		{"YATRA", BucketTravel},
		{"IRCTC", BucketTravel},
		{"INDIGO", BucketTravel},
		{"AIR INDIA", BucketTravel},
		{"VISTARA", BucketTravel},
		{"SPICEJET", BucketTravel},
		{"RYANAIR", BucketTravel},
		{"EMIRATES", BucketTravel},
		{"AIRBNB", BucketTravel},
		{"BOOKING.COM", BucketTravel},
		{"BOOKINGCOM", BucketTravel},
		{"OYO", BucketTravel},
		{"TREEBO", BucketTravel},
		{"MARRIOTT", BucketTravel},
		{"TAJ HOTELS", BucketTravel},
		{"UBER", BucketTravel},
		{"OLA", BucketTravel},
		{"RAPIDO", BucketTravel},
		{"LYFT", BucketTravel},

		// Fuel.
		{"INDIAN OIL", BucketFuel},
		{"INDIANOIL", BucketFuel},
		{"BHARAT PETROLEUM", BucketFuel},
		{"BPCL", BucketFuel},
		{"HINDUSTAN PETROLEUM", BucketFuel},
		{"HPCL", BucketFuel},
		{"SHELL", BucketFuel},
		{"PETROL", BucketFuel},
		{"FUEL", BucketFuel},
		{"GALP", BucketFuel},

		// Utilities and telecom.
		{"ELECTRICITY", BucketUtilities},
		{"BESCOM", BucketUtilities},
		{"MSEB", BucketUtilities},
		{"TATA POWER", BucketUtilities},
		{"ADANI ELECTRICITY", BucketUtilities},
		{"AIRTEL", BucketUtilities},
		{"JIO", BucketUtilities},
		{"VODAFONE", BucketUtilities},
		{"VI RECHARGE", BucketUtilities},
		{"BSNL", BucketUtilities},
		{"BROADBAND", BucketUtilities},
		{"GAS BILL", BucketUtilities},
		{"WATER BILL", BucketUtilities},
		{"MAHANAGAR GAS", BucketUtilities},
		{"INDRAPRASTHA GAS", BucketUtilities},

		// Entertainment and subscriptions.
		{"NETFLIX", BucketEntertainment},
		{"SPOTIFY", BucketEntertainment},
		{"HOTSTAR", BucketEntertainment},
		{"DISNEY", BucketEntertainment},
		{"PRIME VIDEO", BucketEntertainment},
		{"SONYLIV", BucketEntertainment},
		{"BOOKMYSHOW", BucketEntertainment},
		{"PVR", BucketEntertainment},
		{"INOX", BucketEntertainment},
		{"STEAM", BucketEntertainment},
		{"PLAYSTATION", BucketEntertainment},

		// Health.
		{"PHARMEASY", BucketHealth},
		{"NETMEDS", BucketHealth},
		{"1MG", BucketHealth},
		{"APOLLO PHARMACY", BucketHealth},
		{"APOLLO HOSPITAL", BucketHealth},
		{"FORTIS", BucketHealth},
		{"PHARMACY", BucketHealth},
		{"HOSPITAL", BucketHealth},
		{"CLINIC", BucketHealth},
		{"DIAGNOSTIC", BucketHealth},

		// Online retail. "AMAZON PAY" recharges still count as online retail,
		// so a single AMAZON pattern is enough.
		{"AMAZON", BucketOnlineRetail},
		{"FLIPKART", BucketOnlineRetail},
		{"MYNTRA", BucketOnlineRetail},
		{"AJIO", BucketOnlineRetail},
		{"NYKAA", BucketOnlineRetail},
		{"MEESHO", BucketOnlineRetail},
		{"SNAPDEAL", BucketOnlineRetail},
		{"TATA CLIQ", BucketOnlineRetail},
		{"ALIEXPRESS", BucketOnlineRetail},
		{"EBAY", BucketOnlineRetail},
		{"SHOPIFY", BucketOnlineRetail},

		// Dining (after delivery platforms so "SWIGGY DINEOUT" style
		// prefixes have already been claimed).
		{"RESTAURANT", BucketDining},
		{"CAFE", BucketDining},
		{"COFFEE", BucketDining},
		{"STARBUCKS", BucketDining},
		{"MCDONALD", BucketDining},
		{"DOMINO", BucketDining},
		{"PIZZA HUT", BucketDining},
		{"KFC", BucketDining},
		{"BURGER KING", BucketDining},
		{"BARBEQUE NATION", BucketDining},
		{"EATERY", BucketDining},
		{"BISTRO", BucketDining},
	}
}
