package delivery

// Districts is the fixed list of delivery districts offered to customers.
var Districts = []string{
	"Dhaka", "Gazipur", "Narayanganj", "Munshiganj", "Manikganj",
	"Tangail", "Kishoreganj", "Narsingdi", "Chattogram", "Cox's Bazar",
	"Khulna", "Rajshahi", "Sylhet", "Rangpur", "Barisal", "Mymensingh",
	"Cumilla", "Feni", "Noakhali", "Lakshmipur", "Chandpur", "Brahmanbaria",
	"Habiganj", "Moulvibazar", "Sunamganj", "Pabna", "Bogura", "Joypurhat",
	"Naogaon", "Natore", "Sirajganj", "Jashore", "Satkhira", "Magura",
	"Jhenaidah", "Narail", "Kushtia", "Meherpur", "Chuadanga", "Barishal",
	"Patuakhali", "Bhola", "Pirojpur", "Jhalokati", "Barguna",
	"Netrokona", "Sherpur", "Jamalpur", "Dinajpur", "Thakurgaon", "Panchagarh",
	"Nilphamari", "Lalmonirhat", "Kurigram", "Gaibandha",
	"Bagerhat", "Khagrachhari", "Rangamati", "Bandarban",
}

var knownDistricts = func() map[string]bool {
	m := make(map[string]bool, len(Districts))
	for _, d := range Districts {
		m[d] = true
	}
	return m
}()

// IsKnownDistrict reports whether name is one of Districts.
func IsKnownDistrict(name string) bool {
	return knownDistricts[name]
}
