package permissions

import "github.com/ecoles/schoolmanager/internal/models"

// Resources owning permissions in the school catalog.
const (
	ResourceProfile    = "app_profile"
	ResourceAcademic   = "app_academic"
	ResourceGrades     = "app_grades"
	ResourceAttendance = "app_attendance"
	ResourceConfig     = "app_config"
)

// Codenames referenced by the API guards.
const (
	PermViewConfig            = "view_config"
	PermManagePermissions     = "manage_permissions"
	PermAssignRolePermissions = "assign_role_permissions"
	PermViewProfile           = "view_profile"
	PermEditProfile           = "edit_profile"
	PermViewStudent           = "view_student"
	PermViewTeacher           = "view_teacher"
	PermViewParent            = "view_parent"
)

// RoleSeed pairs a role definition with the codenames it is granted on seeding.
type RoleSeed struct {
	RoleDefinition
	Permissions []string
	// AllPermissions grants every catalog permission, overriding Permissions.
	AllPermissions bool
}

// CatalogPermissions is the permission catalog registered at bootstrap.
var CatalogPermissions = []Definition{
	{Codename: "view_profile", Name: "View Profile", Resource: ResourceProfile, Action: models.ActionView, Description: "Can view user profiles"},
	{Codename: "create_profile", Name: "Create Profile", Resource: ResourceProfile, Action: models.ActionCreate, Description: "Can create user profiles"},
	{Codename: "edit_profile", Name: "Edit Profile", Resource: ResourceProfile, Action: models.ActionEdit, Description: "Can edit user profiles"},
	{Codename: "delete_profile", Name: "Delete Profile", Resource: ResourceProfile, Action: models.ActionDelete, Description: "Can delete user profiles"},
	{Codename: "view_all_profiles", Name: "View All Profiles", Resource: ResourceProfile, Action: models.ActionView, Description: "Can view all user profiles in the system"},
	{Codename: "verify_profile", Name: "Verify Profile", Resource: ResourceProfile, Action: models.ActionVerify, Description: "Can submit documents for profile verification"},
	{Codename: "manage_verifications", Name: "Manage Verifications", Resource: ResourceProfile, Action: models.ActionManage, Description: "Can review and approve/reject profile verifications"},
	{Codename: "manage_roles", Name: "Manage Roles", Resource: ResourceProfile, Action: models.ActionManage, Description: "Can manage user roles and permissions"},
	{Codename: "view_student", Name: "View Student", Resource: ResourceProfile, Action: models.ActionView, Description: "Can view student profiles"},
	{Codename: "create_student", Name: "Create Student", Resource: ResourceProfile, Action: models.ActionCreate, Description: "Can create student profiles"},
	{Codename: "edit_student", Name: "Edit Student", Resource: ResourceProfile, Action: models.ActionEdit, Description: "Can edit student profiles"},
	{Codename: "delete_student", Name: "Delete Student", Resource: ResourceProfile, Action: models.ActionDelete, Description: "Can delete student profiles"},
	{Codename: "view_teacher", Name: "View Teacher", Resource: ResourceProfile, Action: models.ActionView, Description: "Can view teacher profiles"},
	{Codename: "create_teacher", Name: "Create Teacher", Resource: ResourceProfile, Action: models.ActionCreate, Description: "Can create teacher profiles"},
	{Codename: "edit_teacher", Name: "Edit Teacher", Resource: ResourceProfile, Action: models.ActionEdit, Description: "Can edit teacher profiles"},
	{Codename: "delete_teacher", Name: "Delete Teacher", Resource: ResourceProfile, Action: models.ActionDelete, Description: "Can delete teacher profiles"},
	{Codename: "view_parent", Name: "View Parent", Resource: ResourceProfile, Action: models.ActionView, Description: "Can view parent profiles"},
	{Codename: "create_parent", Name: "Create Parent", Resource: ResourceProfile, Action: models.ActionCreate, Description: "Can create parent profiles"},
	{Codename: "edit_parent", Name: "Edit Parent", Resource: ResourceProfile, Action: models.ActionEdit, Description: "Can edit parent profiles"},
	{Codename: "delete_parent", Name: "Delete Parent", Resource: ResourceProfile, Action: models.ActionDelete, Description: "Can delete parent profiles"},

	{Codename: "view_academic_year", Name: "View Academic Year", Resource: ResourceAcademic, Action: models.ActionView, Description: "Can view academic years"},
	{Codename: "create_academic_year", Name: "Create Academic Year", Resource: ResourceAcademic, Action: models.ActionCreate, Description: "Can create academic years"},
	{Codename: "edit_academic_year", Name: "Edit Academic Year", Resource: ResourceAcademic, Action: models.ActionEdit, Description: "Can edit academic years"},
	{Codename: "delete_academic_year", Name: "Delete Academic Year", Resource: ResourceAcademic, Action: models.ActionDelete, Description: "Can delete academic years"},
	{Codename: "view_class", Name: "View Class", Resource: ResourceAcademic, Action: models.ActionView, Description: "Can view classes"},
	{Codename: "create_class", Name: "Create Class", Resource: ResourceAcademic, Action: models.ActionCreate, Description: "Can create classes"},
	{Codename: "edit_class", Name: "Edit Class", Resource: ResourceAcademic, Action: models.ActionEdit, Description: "Can edit classes"},
	{Codename: "delete_class", Name: "Delete Class", Resource: ResourceAcademic, Action: models.ActionDelete, Description: "Can delete classes"},
	{Codename: "view_subject", Name: "View Subject", Resource: ResourceAcademic, Action: models.ActionView, Description: "Can view subjects"},
	{Codename: "create_subject", Name: "Create Subject", Resource: ResourceAcademic, Action: models.ActionCreate, Description: "Can create subjects"},
	{Codename: "edit_subject", Name: "Edit Subject", Resource: ResourceAcademic, Action: models.ActionEdit, Description: "Can edit subjects"},
	{Codename: "delete_subject", Name: "Delete Subject", Resource: ResourceAcademic, Action: models.ActionDelete, Description: "Can delete subjects"},
	{Codename: "view_schedule", Name: "View Schedule", Resource: ResourceAcademic, Action: models.ActionView, Description: "Can view schedules"},
	{Codename: "create_schedule", Name: "Create Schedule", Resource: ResourceAcademic, Action: models.ActionCreate, Description: "Can create schedules"},
	{Codename: "edit_schedule", Name: "Edit Schedule", Resource: ResourceAcademic, Action: models.ActionEdit, Description: "Can edit schedules"},
	{Codename: "delete_schedule", Name: "Delete Schedule", Resource: ResourceAcademic, Action: models.ActionDelete, Description: "Can delete schedules"},
	{Codename: "manage_academic", Name: "Manage Academic", Resource: ResourceAcademic, Action: models.ActionManage, Description: "Can manage all academic operations"},

	{Codename: "view_assessment", Name: "View Assessment", Resource: ResourceGrades, Action: models.ActionView, Description: "Can view assessments"},
	{Codename: "create_assessment", Name: "Create Assessment", Resource: ResourceGrades, Action: models.ActionCreate, Description: "Can create assessments"},
	{Codename: "edit_assessment", Name: "Edit Assessment", Resource: ResourceGrades, Action: models.ActionEdit, Description: "Can edit assessments"},
	{Codename: "delete_assessment", Name: "Delete Assessment", Resource: ResourceGrades, Action: models.ActionDelete, Description: "Can delete assessments"},
	{Codename: "view_grade", Name: "View Grade", Resource: ResourceGrades, Action: models.ActionView, Description: "Can view student grades"},
	{Codename: "create_grade", Name: "Create Grade", Resource: ResourceGrades, Action: models.ActionCreate, Description: "Can create student grades"},
	{Codename: "edit_grade", Name: "Edit Grade", Resource: ResourceGrades, Action: models.ActionEdit, Description: "Can edit student grades"},
	{Codename: "delete_grade", Name: "Delete Grade", Resource: ResourceGrades, Action: models.ActionDelete, Description: "Can delete student grades"},
	{Codename: "view_report_card", Name: "View Report Card", Resource: ResourceGrades, Action: models.ActionView, Description: "Can view report cards"},
	{Codename: "create_report_card", Name: "Create Report Card", Resource: ResourceGrades, Action: models.ActionCreate, Description: "Can create report cards"},
	{Codename: "edit_report_card", Name: "Edit Report Card", Resource: ResourceGrades, Action: models.ActionEdit, Description: "Can edit report cards"},
	{Codename: "delete_report_card", Name: "Delete Report Card", Resource: ResourceGrades, Action: models.ActionDelete, Description: "Can delete report cards"},
	{Codename: "manage_grades", Name: "Manage Grades", Resource: ResourceGrades, Action: models.ActionManage, Description: "Can manage all grades and assessments"},

	{Codename: "view_attendance", Name: "View Attendance", Resource: ResourceAttendance, Action: models.ActionView, Description: "Can view attendance records"},
	{Codename: "create_attendance", Name: "Create Attendance", Resource: ResourceAttendance, Action: models.ActionCreate, Description: "Can create attendance records"},
	{Codename: "edit_attendance", Name: "Edit Attendance", Resource: ResourceAttendance, Action: models.ActionEdit, Description: "Can edit attendance records"},
	{Codename: "delete_attendance", Name: "Delete Attendance", Resource: ResourceAttendance, Action: models.ActionDelete, Description: "Can delete attendance records"},
	{Codename: "view_absence", Name: "View Absence", Resource: ResourceAttendance, Action: models.ActionView, Description: "Can view absence records"},
	{Codename: "create_absence", Name: "Create Absence", Resource: ResourceAttendance, Action: models.ActionCreate, Description: "Can create absence records"},
	{Codename: "edit_absence", Name: "Edit Absence", Resource: ResourceAttendance, Action: models.ActionEdit, Description: "Can edit absence records"},
	{Codename: "delete_absence", Name: "Delete Absence", Resource: ResourceAttendance, Action: models.ActionDelete, Description: "Can delete absence records"},
	{Codename: "view_excuse", Name: "View Excuse", Resource: ResourceAttendance, Action: models.ActionView, Description: "Can view excuses"},
	{Codename: "create_excuse", Name: "Create Excuse", Resource: ResourceAttendance, Action: models.ActionCreate, Description: "Can create excuses"},
	{Codename: "edit_excuse", Name: "Edit Excuse", Resource: ResourceAttendance, Action: models.ActionEdit, Description: "Can edit excuses"},
	{Codename: "delete_excuse", Name: "Delete Excuse", Resource: ResourceAttendance, Action: models.ActionDelete, Description: "Can delete excuses"},
	{Codename: "manage_attendance", Name: "Manage Attendance", Resource: ResourceAttendance, Action: models.ActionManage, Description: "Can manage all attendance operations"},

	{Codename: "view_config", Name: "View Configuration", Resource: ResourceConfig, Action: models.ActionView, Description: "Can view configuration"},
	{Codename: "view_all_users", Name: "View All Users", Resource: ResourceConfig, Action: models.ActionView, Description: "Can view all users in the system"},
	{Codename: "assign_role_permissions", Name: "Assign Role Permissions", Resource: ResourceConfig, Action: models.ActionManage, Description: "Can assign permissions based on roles"},
	{Codename: "manage_permissions", Name: "Manage Permissions", Resource: ResourceConfig, Action: models.ActionManage, Description: "Can manage user permissions and roles"},
}

// CatalogRoles are the roles created at bootstrap. Their permission sets are replaced on
// every seeding run.
var CatalogRoles = []RoleSeed{
	{
		RoleDefinition: RoleDefinition{Codename: models.RoleAdmin, Name: "Administrator", Kind: models.RoleKindSystem, Description: "Full access to every feature and to permission management"},
		AllPermissions: true,
	},
	{
		RoleDefinition: RoleDefinition{Codename: "student", Name: "Student", Kind: models.RoleKindSystem, Description: "Base permissions for students"},
		Permissions: []string{
			"view_profile", "edit_profile", "verify_profile", "view_assessment", "view_grade",
			"view_report_card", "view_attendance", "view_absence", "view_excuse", "view_academic_year",
			"view_class", "view_subject", "view_schedule",
		},
	},
	{
		RoleDefinition: RoleDefinition{Codename: "teacher", Name: "Teacher", Kind: models.RoleKindSystem, Description: "Extended permissions for teachers"},
		Permissions: []string{
			"view_profile", "edit_profile", "verify_profile", "view_assessment", "create_assessment",
			"edit_assessment", "delete_assessment", "view_grade", "create_grade", "edit_grade",
			"delete_grade", "view_report_card", "create_report_card", "edit_report_card", "view_attendance",
			"create_attendance", "edit_attendance", "view_absence", "create_absence", "edit_absence",
			"view_excuse", "create_excuse", "edit_excuse", "view_academic_year", "view_class",
			"view_subject", "view_schedule", "edit_schedule", "view_student",
		},
	},
	{
		RoleDefinition: RoleDefinition{Codename: "parent", Name: "Parent", Kind: models.RoleKindSystem, Description: "Read access for parents"},
		Permissions: []string{
			"view_profile", "edit_profile", "verify_profile", "view_grade", "view_report_card",
			"view_attendance", "view_absence", "view_excuse", "view_academic_year", "view_class",
			"view_subject", "view_schedule", "view_student",
		},
	},
	{
		RoleDefinition: RoleDefinition{Codename: "academic_manager", Name: "Academic Manager", Kind: models.RoleKindCustom, Description: "Full control over academic management"},
		Permissions: []string{
			"view_profile", "edit_profile", "view_all_profiles", "view_academic_year",
			"create_academic_year", "edit_academic_year", "delete_academic_year", "view_class",
			"create_class", "edit_class", "delete_class", "view_subject", "create_subject", "edit_subject",
			"delete_subject", "view_schedule", "create_schedule", "edit_schedule", "delete_schedule",
			"manage_academic", "view_student", "create_student", "edit_student", "view_teacher",
			"create_teacher", "edit_teacher", "view_parent", "create_parent", "edit_parent",
		},
	},
	{
		RoleDefinition: RoleDefinition{Codename: "grades_manager", Name: "Grades Manager", Kind: models.RoleKindCustom, Description: "Full control over grades and assessments"},
		Permissions: []string{
			"view_profile", "edit_profile", "view_all_profiles", "view_assessment", "create_assessment",
			"edit_assessment", "delete_assessment", "view_grade", "create_grade", "edit_grade",
			"delete_grade", "view_report_card", "create_report_card", "edit_report_card",
			"delete_report_card", "manage_grades", "view_student",
		},
	},
	{
		RoleDefinition: RoleDefinition{Codename: "attendance_manager", Name: "Attendance Manager", Kind: models.RoleKindCustom, Description: "Full control over attendance and absences"},
		Permissions: []string{
			"view_profile", "edit_profile", "view_all_profiles", "view_attendance", "create_attendance",
			"edit_attendance", "delete_attendance", "view_absence", "create_absence", "edit_absence",
			"delete_absence", "view_excuse", "create_excuse", "edit_excuse", "delete_excuse",
			"manage_attendance", "view_student",
		},
	},
}
