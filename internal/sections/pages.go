package sections

// AutoAssignPages 按展示顺序把非基本信息模块轮流分配到 totalPages 页，基本信息固定在第 1 页。
func AutoAssignPages(s Set, totalPages int) Set {
	if totalPages < 1 {
		totalPages = 1
	}
	ordered := s.NonBasic()
	updates := make([]PageUpdate, 0, len(ordered))
	for i, sec := range ordered {
		updates = append(updates, PageUpdate{SectionID: sec.ID, PageNumber: i%totalPages + 1})
	}
	return s.SetPages(updates)
}

// ResetPages 把所有非基本信息模块移回第 1 页。
func ResetPages(s Set) Set {
	ordered := s.NonBasic()
	updates := make([]PageUpdate, 0, len(ordered))
	for _, sec := range ordered {
		updates = append(updates, PageUpdate{SectionID: sec.ID, PageNumber: 1})
	}
	return s.SetPages(updates)
}

// PageCounts 统计 1..totalPages 每页的非基本信息模块数，超出 totalPages 的不计入。
func PageCounts(s Set, totalPages int) map[int]int {
	counts := make(map[int]int, totalPages)
	for page := 1; page <= totalPages; page++ {
		counts[page] = 0
	}
	for _, sec := range s {
		if sec.IsBasic() {
			continue
		}
		if _, ok := counts[sec.EffectivePage()]; ok {
			counts[sec.EffectivePage()]++
		}
	}
	return counts
}
