// Package catalog holds the static reference data for the 50 CFR titles.
package catalog

import "github.com/ppiankov/ecfr-analyzer/internal/model"

// TitleCount is the number of top-level titles in the code
const TitleCount = 50

// titles is indexed by title number - 1. Title 35 is reserved and has no agencies.
var titles = [TitleCount]model.RegulatoryTitle{
	{Number: 1, Name: "General Provisions", Agencies: []string{"Administrative Committee of the Federal Register", "Office of the Federal Register"}},
	{Number: 2, Name: "Grants and Agreements", Agencies: []string{"Office of Management and Budget"}},
	{Number: 3, Name: "The President", Agencies: []string{"The White House", "Executive Office of the President"}},
	{Number: 4, Name: "Accounts", Agencies: []string{"Government Accountability Office", "Department of the Treasury"}},
	{Number: 5, Name: "Administrative Personnel", Agencies: []string{"Office of Personnel Management", "Merit Systems Protection Board"}},
	{Number: 6, Name: "Domestic Security", Agencies: []string{"Department of Homeland Security"}},
	{Number: 7, Name: "Agriculture", Agencies: []string{"Department of Agriculture"}},
	{Number: 8, Name: "Aliens and Nationality", Agencies: []string{"Department of Homeland Security", "Department of Justice"}},
	{Number: 9, Name: "Animals and Animal Products", Agencies: []string{"Animal and Plant Health Inspection Service", "Department of Agriculture"}},
	{Number: 10, Name: "Energy", Agencies: []string{"Department of Energy", "Nuclear Regulatory Commission"}},
	{Number: 11, Name: "Federal Elections", Agencies: []string{"Federal Election Commission"}},
	{Number: 12, Name: "Banks and Banking", Agencies: []string{"Department of the Treasury", "Federal Reserve System"}},
	{Number: 13, Name: "Business Credit and Assistance", Agencies: []string{"Small Business Administration"}},
	{Number: 14, Name: "Aeronautics and Space", Agencies: []string{"Federal Aviation Administration", "National Aeronautics and Space Administration"}},
	{Number: 15, Name: "Commerce and Foreign Trade", Agencies: []string{"Department of Commerce", "Bureau of Industry and Security"}},
	{Number: 16, Name: "Commercial Practices", Agencies: []string{"Federal Trade Commission", "Consumer Product Safety Commission"}},
	{Number: 17, Name: "Commodity and Securities Exchanges", Agencies: []string{"Commodity Futures Trading Commission", "Securities and Exchange Commission"}},
	{Number: 18, Name: "Conservation of Power and Water Resources", Agencies: []string{"Federal Energy Regulatory Commission"}},
	{Number: 19, Name: "Customs Duties", Agencies: []string{"U.S. Customs and Border Protection", "International Trade Commission"}},
	{Number: 20, Name: "Employees' Benefits", Agencies: []string{"Office of Workers' Compensation Programs", "Department of Labor"}},
	{Number: 21, Name: "Food and Drugs", Agencies: []string{"Food and Drug Administration", "Drug Enforcement Administration"}},
	{Number: 22, Name: "Foreign Relations", Agencies: []string{"Department of State", "Agency for International Development"}},
	{Number: 23, Name: "Highways", Agencies: []string{"Federal Highway Administration"}},
	{Number: 24, Name: "Housing and Urban Development", Agencies: []string{"Department of Housing and Urban Development"}},
	{Number: 25, Name: "Indians", Agencies: []string{"Bureau of Indian Affairs", "Department of the Interior"}},
	{Number: 26, Name: "Internal Revenue", Agencies: []string{"Internal Revenue Service"}},
	{Number: 27, Name: "Alcohol, Tobacco Products and Firearms", Agencies: []string{"Alcohol and Tobacco Tax and Trade Bureau", "Bureau of Alcohol, Tobacco, Firearms, and Explosives"}},
	{Number: 28, Name: "Judicial Administration", Agencies: []string{"Department of Justice", "Federal Bureau of Prisons"}},
	{Number: 29, Name: "Labor", Agencies: []string{"Department of Labor", "National Labor Relations Board"}},
	{Number: 30, Name: "Mineral Resources", Agencies: []string{"Mine Safety and Health Administration", "Department of the Interior"}},
	{Number: 31, Name: "Money and Finance: Treasury", Agencies: []string{"Department of the Treasury", "Office of Management and Budget"}},
	{Number: 32, Name: "National Defense", Agencies: []string{"Department of Defense"}},
	{Number: 33, Name: "Navigation and Navigable Waters", Agencies: []string{"U.S. Army Corps of Engineers", "Coast Guard"}},
	{Number: 34, Name: "Education", Agencies: []string{"Department of Education"}},
	{Number: 35, Name: "Reserved", Agencies: []string{}},
	{Number: 36, Name: "Parks, Forests, and Public Property", Agencies: []string{"National Park Service", "Forest Service"}},
	{Number: 37, Name: "Patents, Trademarks, and Copyrights", Agencies: []string{"U.S. Patent and Trademark Office", "Copyright Office"}},
	{Number: 38, Name: "Pensions, Bonuses, and Veterans' Relief", Agencies: []string{"Department of Veterans Affairs"}},
	{Number: 39, Name: "Postal Service", Agencies: []string{"United States Postal Service"}},
	{Number: 40, Name: "Protection of Environment", Agencies: []string{"Environmental Protection Agency"}},
	{Number: 41, Name: "Public Contracts and Property Management", Agencies: []string{"General Services Administration", "Department of Defense"}},
	{Number: 42, Name: "Public Health", Agencies: []string{"Centers for Medicare & Medicaid Services", "Public Health Service"}},
	{Number: 43, Name: "Public Lands: Interior", Agencies: []string{"Bureau of Land Management", "Department of the Interior"}},
	{Number: 44, Name: "Emergency Management and Assistance", Agencies: []string{"Federal Emergency Management Agency"}},
	{Number: 45, Name: "Public Welfare", Agencies: []string{"Department of Health and Human Services", "Administration for Children and Families"}},
	{Number: 46, Name: "Shipping", Agencies: []string{"Maritime Administration", "Coast Guard"}},
	{Number: 47, Name: "Telecommunication", Agencies: []string{"Federal Communications Commission"}},
	{Number: 48, Name: "Federal Acquisition Regulations System", Agencies: []string{"Department of Defense", "General Services Administration", "National Aeronautics and Space Administration"}},
	{Number: 49, Name: "Transportation", Agencies: []string{"Department of Transportation"}},
	{Number: 50, Name: "Wildlife and Fisheries", Agencies: []string{"U.S. Fish and Wildlife Service", "National Marine Fisheries Service"}},
}

// Lookup returns the metadata for a title number.
// The returned value shares no memory with the table.
func Lookup(number int) (model.RegulatoryTitle, bool) {
	if number < 1 || number > TitleCount {
		return model.RegulatoryTitle{}, false
	}
	return clone(titles[number-1]), true
}

// All returns every title in increasing number order
func All() []model.RegulatoryTitle {
	out := make([]model.RegulatoryTitle, 0, TitleCount)
	for _, t := range titles {
		out = append(out, clone(t))
	}
	return out
}

// Numbers returns 1..TitleCount
func Numbers() []int {
	nums := make([]int, TitleCount)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

func clone(t model.RegulatoryTitle) model.RegulatoryTitle {
	agencies := make([]string, len(t.Agencies))
	copy(agencies, t.Agencies)
	t.Agencies = agencies
	return t
}
