package resume

// BasicSectionID 是默认简历中基本信息模块的 id。
const BasicSectionID = "basic-info"

// SeedDocument 返回首次使用及「清空简历」时恢复的默认简历。
// 每次调用都返回新的副本，调用方可以自由修改。
func SeedDocument() Document {
	return Document{
		ID:       "1",
		Title:    "我的简历",
		Template: "default",
		Layout:   LayoutTopBottom,
		PageSettings: PageSettings{
			EnableMultiPage: true,
			TotalPages:      2,
		},
		Sections: []Section{
			{
				ID:       BasicSectionID,
				Title:    "基本信息",
				IconName: "user",
				Type:     SectionBasic,
				Visible:  true,
				Order:    1,
				Data: BasicInfo{
					Avatar:   "https://imgs.aixifan.com/o_1eemg57nh11nd4d01p9d17i31vi67.gif",
					Name:     "温莎",
					Email:    "wenzhewu2@163.com",
					Phone:    "12345678901",
					Gender:   "男",
					Age:      "22",
					Location: "上海",
					CustomFields: []CustomField{
						{ID: "1", Label: "0年工作经验", IconName: "briefcase"},
						{ID: "2", Label: "期望城市", Value: "上海", IconName: "map-pin"},
						{ID: "3", Label: "个人网站", Value: "https://nekolin.top", IconName: "globe"},
						{ID: "4", Label: "b站", Value: "https://space.bilibili.com/13177962", IconName: "tv"},
					},
				},
			},
			{
				ID:         "advantages",
				Title:      "个人优势",
				IconName:   "star",
				Type:       SectionList,
				EditorType: EditorText,
				Visible:    true,
				Order:      2,
				Data: Text{
					Content: "1. 熟练使用 OpenCV + Qt5 技术\n2. 掌握 javascript (es6+) 和 Vue  技术栈。",
				},
			},
			{
				ID:         "projects",
				Title:      "项目经历",
				IconName:   "settings",
				Type:       SectionTimeline,
				EditorType: EditorTimeline,
				Visible:    true,
				Order:      3,
				Data: Timeline{
					{
						ID:          "1756977218779",
						Title:       "瞌睡检测系统",
						Description: "一个基于 shape predictor 68 face landmarks 构建的人脸识别瞌睡检测，提供驾驶员疲劳追踪的体验。\n- 这份项目是开源的，地址 https://github.com/WindsorWu/Face-recognition-sleepiness-detection\n- ",
					},
					{
						ID:          "1758469873123",
						Title:       "智能AI考勤系统",
						Description: "一个基于百度云人脸识别构建的基于智能AI考勤系统，可以为全校师生提供考勤服务。",
					},
					{
						ID:                "1757064171447",
						Title:             "个人网站",
						Subtitle:          "全栈",
						SecondarySubtitle: "nekolin.top",
						Description:       "一个基于 Hexo 构建的博客网站\n- Google搜索\"nekolin blog\"，本站排名第一\n- 基于Upptime & Baidu Analytics 实现全站流量统计\n- 当然博客网站最重要的还是内容，希望您能通过博文来更全面了解我",
					},
				},
			},
			{
				ID:         "education",
				Title:      "教育背景",
				IconName:   "graduation-cap",
				Type:       SectionTimeline,
				EditorType: EditorTimeline,
				Visible:    true,
				Order:      4,
				Data: Timeline{
					{
						ID:                "1",
						Title:             "上海杉达学院",
						Subtitle:          "软件工程学士",
						SecondarySubtitle: "2024.09 - 2026.06",
						StartDate:         "2024.09",
						EndDate:           "2026.06",
					},
					{
						ID:                "2",
						Title:             "上海电子信息职业技术学院",
						Subtitle:          "人工智能应用技术大专",
						SecondarySubtitle: "2021.09 - 2024.06",
						StartDate:         "2021.09",
						EndDate:           "2024.06",
					},
				},
			},
			{
				ID:         "experience",
				Title:      "校园经历",
				IconName:   "briefcase",
				Type:       SectionTimeline,
				EditorType: EditorTimeline,
				Visible:    true,
				Order:      5,
				PageNumber: 2,
				Data: Timeline{
					{
						ID:          "1",
						Title:       "上海电子信息职业技术学院校团委社会实践部",
						Subtitle:    "副部长（主持工作）",
						StartDate:   "2022.09",
						EndDate:     "2023.06",
						Description: "负责校级社会实践各项活动审核招募工作\n\n【主要职责】\n• \n\n【核心业绩】\n• ",
					},
					{ID: "2"},
				},
			},
		},
	}
}
